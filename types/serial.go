package types

// ------------------------
// Serial line coding
// ------------------------

// Parity follows the CDC line coding numbering (0 none, 1 odd, 2 even).
type Parity uint8

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

const (
	DefaultBitRate  uint32 = 115200
	DefaultDataBits uint8  = 8
	DefaultStopBits uint8  = 1
)

// LineCoding is the (baud, data bits, parity, stop bits) tuple of a serial frame format.
type LineCoding struct {
	BitRate  uint32
	DataBits uint8 // 5..8
	Parity   Parity
	StopBits uint8 // 1 or 2
}

// DefaultLineCoding is the cold-boot configuration: 115200 8N1.
func DefaultLineCoding() LineCoding {
	return LineCoding{
		BitRate:  DefaultBitRate,
		DataBits: DefaultDataBits,
		Parity:   ParityNone,
		StopBits: DefaultStopBits,
	}
}

// Normalized maps out-of-range fields to what the hardware is programmed with:
// data bits outside 5..7 become 8, unknown parity becomes none, stop bits other
// than 2 become 1. BitRate is kept as is.
func (c LineCoding) Normalized() LineCoding {
	switch c.DataBits {
	case 5, 6, 7:
	default:
		c.DataBits = 8
	}
	switch c.Parity {
	case ParityOdd, ParityEven:
	default:
		c.Parity = ParityNone
	}
	if c.StopBits != 2 {
		c.StopBits = 1
	}
	return c
}

// SameFormat reports whether the frame format (data, parity, stop) matches.
func (c LineCoding) SameFormat(o LineCoding) bool {
	return c.DataBits == o.DataBits && c.Parity == o.Parity && c.StopBits == o.StopBits
}
