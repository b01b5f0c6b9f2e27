// Package conv formats numbers without fmt or strconv so MCU builds stay small.
package conv

// Utoa writes base-10 representation of n into buf and returns the used slice.
// buf should be length >= 20 for uint64.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	} else {
		for n > 0 && i > 0 {
			i--
			buf[i] = byte('0' + (n % 10))
			n /= 10
		}
	}
	return buf[i:]
}

// AppendUint appends the decimal form of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var tmp [20]byte
	return append(dst, Utoa(tmp[:], n)...)
}

// Line builds prefix + decimal(n) + suffix into dst[:0] and returns it.
// Diagnostics use it to format "Pulse ch1= 1500\n" style lines without allocating.
func Line(dst []byte, prefix string, n uint64, suffix string) []byte {
	dst = dst[:0]
	dst = append(dst, prefix...)
	dst = AppendUint(dst, n)
	return append(dst, suffix...)
}
