package supervisor

import "escbridge-go/x/mathx"

// ServoState is the servo test's position.
type ServoState uint8

const (
	ServoWaitPowerOff ServoState = iota
	ServoWaitPowerUp
	ServoPowerUpDelay
	ServoDriving
)

func (s ServoState) String() string {
	switch s {
	case ServoWaitPowerUp:
		return "wait_power_up"
	case ServoPowerUpDelay:
		return "power_up_delay"
	case ServoDriving:
		return "driving"
	default:
		return "wait_power_off"
	}
}

const (
	servoMin    = 0
	servoCentre = 90
	servoMax    = 180
)

// ServoTest positions a servo powered through the ESC supply from host
// keystrokes:
//
//	+  one degree up     o  180
//	-  one degree down   k  90
//	                     m  0
type ServoTest struct {
	st    ServoState
	ticks uint32

	target      int
	written     int // angle the actuator was last given
	initialised bool

	cmd [32]byte
}

func (m *ServoTest) Name() string { return "servo test" }

func (m *ServoTest) State() ServoState { return m.st }

// Target returns the commanded angle in degrees.
func (m *ServoTest) Target() int { return m.target }

func (m *ServoTest) Enter(*Env) {
	m.st = ServoWaitPowerOff
	m.ticks = 0
	m.target = servoCentre
	m.written = servoCentre
}

func (m *ServoTest) Step(env *Env) {
	n := env.Debug.ReadCommands(m.cmd[:])
	for _, k := range m.cmd[:n] {
		if m.key(k) {
			env.Debug.PrintUint("Set ch1 = ", uint64(m.target), " deg\n")
		}
	}

	tk := env.Ticks
	switch m.st {
	case ServoWaitPowerOff:
		if !env.Powered {
			m.goTo(ServoWaitPowerUp)
			return
		}
		m.ticks++
		if m.ticks >= tk.ReportPeriod {
			env.Debug.Print("Switch power off first\n")
			m.ticks = 0
		}

	case ServoWaitPowerUp:
		if !env.Powered {
			return
		}
		if !m.initialised {
			env.Debug.Print("Init PWM\n")
			if err := env.Servo.Init(); err != nil {
				env.Debug.Print("Servo init failed\n")
			}
			if err := env.Pulse.Init(); err != nil {
				env.Debug.Print("Pulse input init failed\n")
			}
			m.initialised = true
		} else {
			env.Debug.Print("Restart without init PWM\n")
		}
		m.goTo(ServoPowerUpDelay)

	case ServoPowerUpDelay:
		if !env.Powered {
			m.goTo(ServoWaitPowerUp)
			return
		}
		m.ticks++
		if m.ticks >= tk.PowerUpDelay {
			env.Servo.Start(uint8(m.target))
			env.Debug.PrintUint("Start ch1 = ", uint64(m.target), " deg\n")
			m.written = m.target
			m.goTo(ServoDriving)
		}

	case ServoDriving:
		if !env.Powered {
			env.Servo.Stop()
			env.Debug.Print("Power is off\n")
			m.goTo(ServoWaitPowerUp)
			return
		}
		m.ticks++
		if m.ticks == tk.ReportPeriod/2 {
			env.Debug.PrintUint("Pulse ch1= ", uint64(env.Pulse.PulseWidth()), "\n")
		}
		if m.ticks >= tk.ReportPeriod {
			m.ticks = 0
			if m.target != m.written {
				env.Servo.SetAngle(uint8(m.target))
				env.Debug.PrintUint("Write ch1 = ", uint64(m.target), " deg\n")
				m.written = m.target
			}
		}
	}
}

// key applies one keystroke and reports whether it was a servo command.
func (m *ServoTest) key(k byte) bool {
	next := m.target
	switch k {
	case '+':
		next, _ = mathx.StepClamped(m.target, 1, servoMin, servoMax)
	case '-':
		next, _ = mathx.StepClamped(m.target, -1, servoMin, servoMax)
	case 'o':
		next = servoMax
	case 'k':
		next = servoCentre
	case 'm':
		next = servoMin
	default:
		return false
	}
	m.target = next
	return true
}

func (m *ServoTest) goTo(s ServoState) {
	m.st = s
	m.ticks = 0
}
