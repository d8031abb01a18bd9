package permkit

import "strconv"

// Mask is a 64-bit capability bitmask. Set bits represent held capabilities.
type Mask uint64

// Bit returns a Mask with only bit n set, or 0 when n is out of range.
func Bit(n int) Mask {
	if n < 0 || n >= 64 {
		return 0
	}
	return 1 << n
}

// Has reports whether every bit set in want is also set in m.
func (m Mask) Has(want Mask) bool {
	return m&want == want
}

// Any reports whether m and other share at least one set bit.
func (m Mask) Any(other Mask) bool {
	return m&other != 0
}

func (m *Mask) Set(bits Mask) {
	*m |= bits
}

func (m *Mask) Clear(bits Mask) {
	*m &^= bits
}

func (m Mask) Union(other Mask) Mask {
	return m | other
}

func (m Mask) Raw() uint64 {
	return uint64(m)
}

// String formats the mask as 0x-prefixed hex.
func (m Mask) String() string {
	return "0x" + strconv.FormatUint(uint64(m), 16)
}
