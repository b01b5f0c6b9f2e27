package supervisor

// ReceiverState is the receiver test's position.
type ReceiverState uint8

const (
	RecvWaitInit ReceiverState = iota
	RecvWaitPowerOn
	RecvPowerUpDelay
	RecvActiveReading
	RecvPowerLost
)

func (s ReceiverState) String() string {
	switch s {
	case RecvWaitPowerOn:
		return "wait_power_on"
	case RecvPowerUpDelay:
		return "power_up_delay"
	case RecvActiveReading:
		return "active_reading"
	case RecvPowerLost:
		return "power_lost"
	default:
		return "wait_init"
	}
}

// ReceiverTest reports the channel 1 pulse width of an RC receiver powered
// through the ESC supply.
type ReceiverTest struct {
	st    ReceiverState
	ticks uint32
	cmd   [32]byte
}

func (m *ReceiverTest) Name() string { return "receiver test" }

func (m *ReceiverTest) State() ReceiverState { return m.st }

func (m *ReceiverTest) Enter(*Env) {
	m.st = RecvWaitInit
	m.ticks = 0
}

func (m *ReceiverTest) Step(env *Env) {
	// Keystrokes have no meaning here; keep the queue from filling.
	env.Debug.ReadCommands(m.cmd[:])

	tk := env.Ticks
	switch m.st {
	case RecvWaitInit:
		if err := env.Pulse.Init(); err != nil {
			env.Debug.Print("Pulse input init failed\n")
		}
		m.goTo(RecvWaitPowerOn)

	case RecvWaitPowerOn:
		if env.Powered {
			m.goTo(RecvPowerUpDelay)
			return
		}
		m.ticks++
		if m.ticks >= tk.ReportPeriod {
			env.Debug.Print("Switch power on\n")
			m.ticks = 0
		}

	case RecvPowerUpDelay:
		if !env.Powered {
			env.Debug.Print("Power is off\n")
			m.goTo(RecvPowerLost)
			return
		}
		m.ticks++
		if m.ticks >= tk.PowerUpDelay {
			env.Pulse.Reset()
			env.Debug.Print("Start reading pulses\n")
			m.goTo(RecvActiveReading)
		}

	case RecvActiveReading:
		if !env.Powered {
			env.Debug.Print("Power is off\n")
			m.goTo(RecvPowerLost)
			return
		}
		m.ticks++
		if m.ticks == tk.LivenessWait {
			if w := env.Pulse.PulseWidth(); w == 0 {
				env.Debug.Print("Channel 1 disconnected\n")
			} else {
				env.Debug.PrintUint("Pulse ch1= ", uint64(w), "\n")
			}
		}
		if m.ticks >= tk.ReportPeriod {
			env.Pulse.Reset()
			m.ticks = 0
		}

	case RecvPowerLost:
		if env.Powered {
			env.Debug.Print("Power is on again\n")
			m.goTo(RecvPowerUpDelay)
		}
	}
}

func (m *ReceiverTest) goTo(s ReceiverState) {
	m.st = s
	m.ticks = 0
}
