// Package config resolves the board wiring and control-loop timing for a device.
//
// Configurations are embedded JSON documents keyed by device name. Fields that a
// document omits keep the built-in defaults, so a board profile only lists what
// differs from the reference wiring.
package config

import (
	"bytes"
	"encoding/json"
	"time"

	"escbridge-go/errcode"
	"escbridge-go/x/timex"
)

const DefaultDevice = "pico"

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Config is the complete firmware configuration.
type Config struct {
	Pins   Pins   `json:"pins"`
	Serial Serial `json:"serial"`
	Timing Timing `json:"timing"`

	// BufferSize is the capacity of each transport queue (both directions).
	BufferSize int `json:"buffer_size"`
	// RXStageSize is the lock-free receive staging ring size (power of two).
	RXStageSize int `json:"rx_stage_size"`
}

// Pins are plain GPIO numbers; mapping to machine.Pin happens in the provider.
type Pins struct {
	Button      int `json:"button"`    // active-low push button
	ESCPower    int `json:"esc_power"` // active-high "device powered" sense
	LEDBlue     int `json:"led_blue"`
	LEDRed      int `json:"led_red"`
	LEDOnboard  int `json:"led_onboard"`
	UARTTX      int `json:"uart_tx"`
	UARTRX      int `json:"uart_rx"`
	ReceiverCh1 int `json:"receiver_ch1"`
	ServoCh1    int `json:"servo_ch1"`
}

// Serial describes the hardware serial peripheral used by the bridge.
type Serial struct {
	Bus      string `json:"bus"`       // "uart0" or "uart1"
	Invert   bool   `json:"invert"`    // invert TX and RX at the pad
	RXPullUp bool   `json:"rx_pullup"` // enable the RX pad pull-up
}

// Timing holds every elapsed-time threshold in milliseconds (microseconds for
// the tick). The control loop works in ticks; see Ticks.
type Timing struct {
	TickUS     uint32 `json:"tick_us"`
	WatchdogMS uint32 `json:"watchdog_ms"`

	ShortMinMS uint32 `json:"short_min_ms"`
	ShortMaxMS uint32 `json:"short_max_ms"`
	LongMinMS  uint32 `json:"long_min_ms"`

	PowerUpDelayMS uint32 `json:"power_up_delay_ms"`
	ReportPeriodMS uint32 `json:"report_period_ms"`
	RCFrameMS      uint32 `json:"rc_frame_ms"`
	LivenessSlack  uint32 `json:"liveness_slack_ms"`

	BlinkSlowMS    uint32 `json:"blink_slow_ms"`
	BlinkMediumMS  uint32 `json:"blink_medium_ms"`
	BlinkFastMS    uint32 `json:"blink_fast_ms"`
	ConfirmPhaseMS uint32 `json:"confirm_phase_ms"`
}

// Ticks is Timing converted to control-loop iterations.
type Ticks struct {
	Tick time.Duration

	ShortMin uint32
	ShortMax uint32
	LongMin  uint32

	PowerUpDelay uint32
	ReportPeriod uint32
	LivenessWait uint32

	BlinkSlow    uint32
	BlinkMedium  uint32
	BlinkFast    uint32
	ConfirmPhase uint32
}

// Default returns the reference wiring and timing.
func Default() Config {
	return Config{
		Pins: Pins{
			Button:      15,
			ESCPower:    2,
			LEDBlue:     16,
			LEDRed:      17,
			LEDOnboard:  25,
			UARTTX:      12,
			UARTRX:      13,
			ReceiverCh1: 3,
			ServoCh1:    14,
		},
		Serial: Serial{Bus: "uart0", Invert: true, RXPullUp: true},
		Timing: Timing{
			TickUS:         10,
			WatchdogMS:     500,
			ShortMinMS:     150,
			ShortMaxMS:     1000,
			LongMinMS:      3000,
			PowerUpDelayMS: 3,
			ReportPeriodMS: 200,
			RCFrameMS:      20,
			LivenessSlack:  5,
			BlinkSlowMS:    500,
			BlinkMediumMS:  250,
			BlinkFastMS:    100,
			ConfirmPhaseMS: 250,
		},
		BufferSize:  2560,
		RXStageSize: 4096,
	}
}

// Load resolves the embedded configuration for device on top of Default.
func Load(device string) (Config, error) {
	cfg := Default()
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return cfg, &errcode.E{C: errcode.UnknownDevice, Op: "config.load", Msg: device}
	}
	if err := Decode(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode overlays the JSON document raw onto cfg and validates the result.
func Decode(raw []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return errcode.Wrap(errcode.InvalidConfig, "config.decode", err)
	}
	return Validate(cfg)
}

// Validate checks configuration correctness. It does not mutate cfg.
func Validate(cfg *Config) error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidConfig, Op: "config.validate", Msg: msg}
	}

	p := cfg.Pins
	pins := []int{p.Button, p.ESCPower, p.LEDBlue, p.LEDRed, p.LEDOnboard, p.UARTTX, p.UARTRX, p.ReceiverCh1, p.ServoCh1}
	seen := map[int]bool{}
	for _, n := range pins {
		if n < 0 || n > 29 {
			return bad("pin out of range")
		}
		if seen[n] {
			return bad("pin assigned twice")
		}
		seen[n] = true
	}

	switch cfg.Serial.Bus {
	case "uart0", "uart1":
	default:
		return bad("serial bus must be uart0 or uart1")
	}

	t := cfg.Timing
	if t.TickUS == 0 {
		return bad("tick_us must be > 0")
	}
	if t.WatchdogMS == 0 || t.WatchdogMS > 8000 {
		return bad("watchdog_ms must be in 1..8000")
	}
	if t.ShortMinMS >= t.ShortMaxMS || t.ShortMaxMS > t.LongMinMS {
		return bad("button thresholds must satisfy short_min < short_max <= long_min")
	}
	if t.ReportPeriodMS == 0 || t.RCFrameMS == 0 {
		return bad("report_period_ms and rc_frame_ms must be > 0")
	}
	if t.RCFrameMS+t.LivenessSlack >= t.ReportPeriodMS {
		return bad("liveness wait must fit inside report_period_ms")
	}
	if t.BlinkSlowMS == 0 || t.BlinkMediumMS == 0 || t.BlinkFastMS == 0 || t.ConfirmPhaseMS == 0 {
		return bad("blink periods must be > 0")
	}

	if cfg.BufferSize <= 0 {
		return bad("buffer_size must be > 0")
	}
	if n := cfg.RXStageSize; n < 2 || n&(n-1) != 0 {
		return bad("rx_stage_size must be a power of two")
	}
	return nil
}

// Tick returns the control-loop period.
func (t Timing) Tick() time.Duration { return time.Duration(t.TickUS) * time.Microsecond }

// WatchdogTimeout returns the watchdog period.
func (t Timing) WatchdogTimeout() time.Duration { return ms(t.WatchdogMS) }

// Ticks converts every threshold into control-loop iterations.
func (t Timing) Ticks() Ticks {
	tick := t.Tick()
	conv := func(v uint32) uint32 { return timex.Ticks(ms(v), tick) }
	return Ticks{
		Tick:         tick,
		ShortMin:     conv(t.ShortMinMS),
		ShortMax:     conv(t.ShortMaxMS),
		LongMin:      conv(t.LongMinMS),
		PowerUpDelay: conv(t.PowerUpDelayMS),
		ReportPeriod: conv(t.ReportPeriodMS),
		LivenessWait: conv(t.RCFrameMS + t.LivenessSlack),
		BlinkSlow:    conv(t.BlinkSlowMS),
		BlinkMedium:  conv(t.BlinkMediumMS),
		BlinkFast:    conv(t.BlinkFastMS),
		ConfirmPhase: conv(t.ConfirmPhaseMS),
	}
}

func ms(v uint32) time.Duration { return time.Duration(v) * time.Millisecond }
