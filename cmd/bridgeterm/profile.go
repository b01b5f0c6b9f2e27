// cmd/bridgeterm/profile.go
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"escbridge-go/errcode"
	"escbridge-go/types"

	"github.com/goburrow/serial"
	"gopkg.in/yaml.v3"
)

// Profile is the YAML description of how to open the board's CDC port.
type Profile struct {
	Port          string `yaml:"port"`
	Baud          uint32 `yaml:"baud"`
	DataBits      uint8  `yaml:"data_bits"`
	Parity        string `yaml:"parity"` // none | odd | even
	StopBits      uint8  `yaml:"stop_bits"`
	ReadTimeoutMS int    `yaml:"read_timeout_ms"`

	// Keys are sent once after opening (servo test), KeyGapMS apart.
	Keys     string `yaml:"keys"`
	KeyGapMS int    `yaml:"key_gap_ms"`
}

func defaultProfile() Profile {
	return Profile{
		Port:          "/dev/ttyACM0",
		Baud:          types.DefaultBitRate,
		DataBits:      types.DefaultDataBits,
		Parity:        "none",
		StopBits:      types.DefaultStopBits,
		ReadTimeoutMS: 200,
		KeyGapMS:      50,
	}
}

// LoadProfile reads path over the defaults. An empty path returns defaults.
func LoadProfile(path string) (Profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, p.Validate()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, errcode.Wrap(errcode.InvalidConfig, "profile.load", err)
	}
	return p, p.Validate()
}

// Validate rejects line codings the bridge cannot reproduce on its UART.
func (p *Profile) Validate() error {
	bad := func(format string, a ...any) error {
		return &errcode.E{C: errcode.InvalidCoding, Op: "profile.validate", Msg: fmt.Sprintf(format, a...)}
	}
	if p.Port == "" {
		return &errcode.E{C: errcode.InvalidConfig, Op: "profile.validate", Msg: "port is required"}
	}
	if p.Baud == 0 {
		return bad("baud must be > 0")
	}
	if p.DataBits < 5 || p.DataBits > 8 {
		return bad("data_bits %d out of range 5..8", p.DataBits)
	}
	if _, ok := parseParity(p.Parity); !ok {
		return bad("unknown parity %q", p.Parity)
	}
	if p.StopBits != 1 && p.StopBits != 2 {
		return bad("stop_bits must be 1 or 2, got %d", p.StopBits)
	}
	if p.ReadTimeoutMS < 0 || p.KeyGapMS < 0 {
		return &errcode.E{C: errcode.InvalidConfig, Op: "profile.validate", Msg: "timeouts must not be negative"}
	}
	return nil
}

// Coding returns the line coding the host will request.
func (p *Profile) Coding() types.LineCoding {
	par, _ := parseParity(p.Parity)
	return types.LineCoding{BitRate: p.Baud, DataBits: p.DataBits, Parity: par, StopBits: p.StopBits}
}

// SerialConfig maps the profile onto the serial library's settings.
func (p *Profile) SerialConfig() *serial.Config {
	c := p.Coding()
	par := "N"
	switch c.Parity {
	case types.ParityOdd:
		par = "O"
	case types.ParityEven:
		par = "E"
	}
	return &serial.Config{
		Address:  p.Port,
		BaudRate: int(c.BitRate),
		DataBits: int(c.DataBits),
		StopBits: int(c.StopBits),
		Parity:   par,
		Timeout:  time.Duration(p.ReadTimeoutMS) * time.Millisecond,
	}
}

func parseParity(s string) (types.Parity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n":
		return types.ParityNone, true
	case "odd", "o":
		return types.ParityOdd, true
	case "even", "e":
		return types.ParityEven, true
	}
	return types.ParityNone, false
}
