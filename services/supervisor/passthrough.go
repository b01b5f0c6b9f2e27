package supervisor

// Passthrough bridges USB and the ESC serial line. It has no state.
type Passthrough struct{}

func (Passthrough) Name() string { return "esc programmer" }
func (Passthrough) Enter(*Env)   {}

func (Passthrough) Step(env *Env) {
	if env.Serial != nil {
		env.Serial.Pump()
	}
}
