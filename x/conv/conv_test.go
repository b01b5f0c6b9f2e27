package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUtoa(t *testing.T) {
	var buf [20]byte
	assert.Equal(t, "0", string(Utoa(buf[:], 0)))
	assert.Equal(t, "115200", string(Utoa(buf[:], 115200)))
	assert.Equal(t, "18446744073709551615", string(Utoa(buf[:], ^uint64(0))))
	assert.Empty(t, Utoa(nil, 5))
}

func TestLine(t *testing.T) {
	var buf [32]byte
	assert.Equal(t, "Pulse ch1= 1500\n", string(Line(buf[:0], "Pulse ch1= ", 1500, "\n")))
	assert.Equal(t, "Set ch1 = 90 deg\n", string(Line(buf[:0], "Set ch1 = ", 90, " deg\n")))
}
