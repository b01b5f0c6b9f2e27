package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineCodingNormalized(t *testing.T) {
	cases := []struct {
		in, want LineCoding
	}{
		{LineCoding{9600, 7, ParityEven, 2}, LineCoding{9600, 7, ParityEven, 2}},
		{LineCoding{9600, 9, Parity(4), 0}, LineCoding{9600, 8, ParityNone, 1}},
		{LineCoding{19200, 0, ParityOdd, 3}, LineCoding{19200, 8, ParityOdd, 1}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.in.Normalized())
	}
}

func TestLineCodingSameFormat(t *testing.T) {
	a := DefaultLineCoding()
	b := a
	b.BitRate = 9600
	assert.True(t, a.SameFormat(b))
	b.StopBits = 2
	assert.False(t, a.SameFormat(b))
}

func TestOpModeCycle(t *testing.T) {
	m := ModeESCPassthrough
	m = m.Next()
	assert.Equal(t, ModeReceiverTest, m)
	m = m.Next()
	assert.Equal(t, ModeServoTest, m)
	m = m.Next()
	assert.Equal(t, ModeESCPassthrough, m)
	assert.Equal(t, ModeESCPassthrough, ModeUndefined.Next())
}

func TestButtonEventIsRelease(t *testing.T) {
	assert.True(t, ButtonShortRelease.IsRelease())
	assert.True(t, ButtonLongRelease.IsRelease())
	assert.True(t, ButtonReleasedEdge.IsRelease())
	assert.False(t, ButtonReleased.IsRelease())
	assert.False(t, ButtonPressedEdge.IsRelease())
}
