package input

import (
	"testing"
	"time"

	"escbridge-go/services/config"
	"escbridge-go/services/hal"
	"escbridge-go/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultThresholds() (Thresholds, time.Duration) {
	tk := config.Default().Timing.Ticks()
	return Thresholds{ShortMin: tk.ShortMin, ShortMax: tk.ShortMax, LongMin: tk.LongMin}, tk.Tick
}

// hold presses the button for d and returns the event seen on release.
func hold(t *testing.T, c *Classifier, pin *hal.SimPin, d, tick time.Duration) types.ButtonEvent {
	t.Helper()
	pin.Set(false)
	require.Equal(t, types.ButtonPressedEdge, c.Step())
	for i := time.Duration(1); i < d/tick; i++ {
		require.Equal(t, types.ButtonPressed, c.Step())
	}
	pin.Set(true)
	return c.Step()
}

func TestTripleSample(t *testing.T) {
	p := hal.NewSimPin(true)
	assert.Equal(t, types.LevelHigh, TripleSample(p))
	p.Set(false)
	assert.Equal(t, types.LevelLow, TripleSample(p))
	p.Glitch(false, true, false)
	assert.Equal(t, types.LevelUnknown, TripleSample(p))
}

func TestClassifier_HoldDurations(t *testing.T) {
	th, tick := defaultThresholds()
	cases := []struct {
		name string
		d    time.Duration
		want types.ButtonEvent
	}{
		{"tap", 50 * time.Millisecond, types.ButtonReleasedEdge},
		{"short", 500 * time.Millisecond, types.ButtonShortRelease},
		{"between", 1200 * time.Millisecond, types.ButtonReleasedEdge},
		{"long", 4 * time.Second, types.ButtonLongRelease},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pin := hal.NewSimPin(true)
			c := NewClassifier(pin, th)
			require.Equal(t, types.ButtonReleased, c.Step())
			assert.Equal(t, tc.want, hold(t, c, pin, tc.d, tick))
			assert.Equal(t, types.ButtonReleased, c.Step())
		})
	}
}

func TestClassifier_HeldAtBootWaitsForRelease(t *testing.T) {
	th, _ := defaultThresholds()
	pin := hal.NewSimPin(false)
	c := NewClassifier(pin, th)
	for i := 0; i < 1000; i++ {
		require.Equal(t, types.ButtonInitializing, c.Step())
	}
	pin.Set(true)
	assert.Equal(t, types.ButtonReleased, c.Step())
	pin.Set(false)
	assert.Equal(t, types.ButtonPressedEdge, c.Step())
	assert.Equal(t, types.ButtonPressed, c.Step())
}

func TestClassifier_UnknownReadsDoNotAdvance(t *testing.T) {
	th, _ := defaultThresholds()
	pin := hal.NewSimPin(true)
	c := NewClassifier(pin, th)

	pin.Glitch(true, false, true)
	assert.Equal(t, types.ButtonInitializing, c.Step())
	assert.Equal(t, types.ButtonReleased, c.Step())

	// A single low sample between highs is not a press.
	pin.Glitch(true, true, false)
	assert.Equal(t, types.ButtonReleased, c.Step())

	pin.Set(false)
	assert.Equal(t, types.ButtonPressedEdge, c.Step())
	pin.Glitch(false, true, false)
	assert.Equal(t, types.ButtonPressed, c.Step(), "glitch while held is not a release")
}

func TestPowerSense_HoldsThroughGlitches(t *testing.T) {
	pin := hal.NewSimPin(false)
	s := NewPowerSense(pin)
	assert.False(t, s.Sample())

	pin.Set(true)
	assert.True(t, s.Sample())

	pin.Glitch(true, false, true)
	assert.True(t, s.Sample())
	pin.Glitch(false, false, true)
	assert.True(t, s.Sample())

	pin.Set(false)
	assert.False(t, s.Sample())
}
