package types

// OpMode is the run mode chosen once per boot.
type OpMode uint8

const (
	ModeUndefined OpMode = iota
	ModeESCPassthrough
	ModeReceiverTest
	ModeServoTest
)

func (m OpMode) String() string {
	switch m {
	case ModeESCPassthrough:
		return "esc-passthrough"
	case ModeReceiverTest:
		return "receiver-test"
	case ModeServoTest:
		return "servo-test"
	default:
		return "undefined"
	}
}

// Next returns the following mode in the selection cycle
// esc-passthrough -> receiver-test -> servo-test -> esc-passthrough.
func (m OpMode) Next() OpMode {
	switch m {
	case ModeESCPassthrough:
		return ModeReceiverTest
	case ModeReceiverTest:
		return ModeServoTest
	default:
		return ModeESCPassthrough
	}
}
