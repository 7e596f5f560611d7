package fortuna

// counter is a 128-bit little-endian integer used as the Generator's block
// counter. It is kept as a BlockLength-byte slice rather than two uint64
// limbs because it is serialized directly into the PRF's input block.
type counter [BlockLength]byte

// incr adds 1 to c, wrapping silently on overflow. 2^128 increments are
// unreachable in practice, so overflow is not treated as a fault.
func (c *counter) incr() {
	for i := range c {
		c[i]++
		if c[i] != 0 {
			return
		}
	}
}

// isZero reports whether the counter is still at its unseeded sentinel
// value.
func (c *counter) isZero() bool {
	for _, b := range c {
		if b != 0 {
			return false
		}
	}
	return true
}
