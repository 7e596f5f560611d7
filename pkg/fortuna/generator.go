package fortuna

// MaxGenerateSize is the maximum number of bytes a single call to the
// generator's pseudoRandomData may produce. It bounds the statistical
// distance from uniform that CTR mode over a 128-bit permutation
// accumulates; callers asking for more are chunked by the Accumulator.
const MaxGenerateSize = 1 << 20

// generator is a keyed CTR-mode pseudo-random stream. Its state is a
// 32-byte key and a 128-bit counter; the counter is zero if and only if the
// generator has never been reseeded. Once reseeded the counter never
// returns to zero for the generator's lifetime.
type generator struct {
	newPRF  PRFFactory
	newHash HashFactory
	key     [KeyLength]byte
	ctr     counter
}

func newGenerator(newPRF PRFFactory, newHash HashFactory) *generator {
	return &generator{newPRF: newPRF, newHash: newHash}
}

// seeded reports whether reseed has ever been called.
func (g *generator) seeded() bool {
	return !g.ctr.isZero()
}

// reseed folds seed into the key via key' = Hash(key || seed) and
// increments the counter, marking the generator seeded on the first call.
func (g *generator) reseed(seed []byte) {
	h := g.newHash()
	h.Write(g.key[:])
	h.Write(seed)
	digest := h.Sum(nil)
	copy(g.key[:], digest)
	g.ctr.incr()
}

// generateBlocks fills out with successive PRF(key, counter) blocks,
// advancing the counter once per block produced, including a partial final
// block. The caller must have already verified the generator is seeded.
func (g *generator) generateBlocks(out []byte) {
	prf := g.newPRF(g.key[:])
	var block [BlockLength]byte
	for len(out) > 0 {
		copy(block[:], g.ctr[:])
		prf.Apply(block[:])
		n := copy(out, block[:])
		g.ctr.incr()
		out = out[n:]
	}
}

// pseudoRandomData is the user-facing generator call: it emits len(out)
// bytes of keystream, then unconditionally rekeys itself by generating 32
// fresh bytes and installing them as the new key. The rekey is mandatory —
// it is what gives every request forward secrecy against a later key
// compromise. Preconditions: len(out) <= MaxGenerateSize and the generator
// must already be seeded.
func (g *generator) pseudoRandomData(out []byte) {
	if len(out) > MaxGenerateSize {
		panic("fortuna: generate request exceeds MaxGenerateSize")
	}
	if !g.seeded() {
		panic("fortuna: generator used before first reseed")
	}

	g.generateBlocks(out)

	var newKey [KeyLength]byte
	g.generateBlocks(newKey[:])
	g.key = newKey
}
