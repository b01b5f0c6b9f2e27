package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device name (selected at build time in cmd/escbridge)
// Val: raw JSON overlaid on Default()
// -----------------------------------------------------------------------------

const cfgPico = `{
  "pins": {
    "button": 15,
    "esc_power": 2,
    "led_blue": 16,
    "led_red": 17,
    "led_onboard": 25
  },
  "serial": {
    "bus": "uart0",
    "invert": true,
    "rx_pullup": true
  }
}`

// Same wiring, non-inverted line for ESCs driven through a level shifter.
const cfgPicoPlain = `{
  "serial": {
    "bus": "uart0",
    "invert": false,
    "rx_pullup": true
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico":       []byte(cfgPico),
	"pico_plain": []byte(cfgPicoPlain),
}
