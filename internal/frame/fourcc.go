package frame

import "fmt"

// Fourcc builds a DRM format code.
func Fourcc(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

var (
	FormatARGB8888 = Fourcc('A', 'R', '2', '4')
	FormatXRGB8888 = Fourcc('X', 'R', '2', '4')
)

const (
	ModifierLinear  uint64 = 0
	ModifierInvalid uint64 = 0x00ffffffffffffff
)

// FourccString renders a format code as its four characters.
func FourccString(code uint32) string {
	b := []byte{byte(code), byte(code >> 8), byte(code >> 16), byte(code >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", code)
		}
	}
	return string(b)
}
