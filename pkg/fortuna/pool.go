package fortuna

// pool is one of the 32 entropy accumulators. It absorbs arbitrary event
// bytes into a running hash and tracks the total number of bytes it has
// absorbed since it was last harvested.
//
// A pool's zero value is not usable; construct with newPool.
type pool struct {
	hasher Hash
	length int
}

func newPool(newHash HashFactory) *pool {
	return &pool{hasher: newHash()}
}

// input absorbs data into the pool's hash and extends its length.
func (p *pool) input(data []byte) {
	p.hasher.Write(data)
	p.length += len(data)
}

// harvest finalizes the pool's hash into a KeyLength-byte digest and resets
// the pool to empty. The digest is single-use seed material: once folded
// into a reseed, the pool it came from must not yield the same bytes again,
// which is why harvest always resets.
func (p *pool) harvest(newHash HashFactory) []byte {
	digest := p.hasher.Sum(nil)
	p.hasher = newHash()
	p.length = 0
	return digest
}
