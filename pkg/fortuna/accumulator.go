package fortuna

// PoolCount is the number of independent entropy pools the Accumulator
// distributes events across.
const PoolCount = 32

// MinPoolSize is the minimum number of bytes pool 0 must have absorbed
// before the first reseed — and before any subsequent time-gated reseed —
// is allowed to fire.
const MinPoolSize = 64

// ReseedMinIntervalMs is the number of milliseconds that must be exceeded
// between reseed attempts, once the accumulator has been seeded at least
// once. It prevents a flood of small requests from draining pools
// faster than entropy can accumulate.
const ReseedMinIntervalMs = 100

// Accumulator is the Fortuna entropy accumulator: it routes entropy events
// into 32 pools, decides when to reseed the Generator, and drives the
// Generator for user requests. It owns all of its pools, its generator and
// its timer; none of its inputs are retained as borrowed references beyond
// a single call.
//
// Accumulator is not safe for concurrent use — callers sharing one instance
// across goroutines must serialize access themselves.
type Accumulator struct {
	pools         [PoolCount]*pool
	generator     *generator
	timer         Timer
	newHash       HashFactory
	reseedCounter uint32
}

// New constructs an Accumulator using newPRF and newHash as the PRF and Hash
// collaborators, and timer to gate reseed timing. The accumulator starts
// unseeded: RandomData returns ErrNotSeeded until enough entropy has been
// added via AddEvent.
func New(newPRF PRFFactory, newHash HashFactory, timer Timer) *Accumulator {
	a := &Accumulator{
		generator: newGenerator(newPRF, newHash),
		timer:     timer,
		newHash:   newHash,
	}
	for i := range a.pools {
		a.pools[i] = newPool(newHash)
	}
	return a
}

// AddEvent routes an entropy event into the pool at poolIndex. data must be
// between 1 and 32 bytes inclusive and poolIndex must be less than
// PoolCount; violating either is a programmer error and panics. The pool
// absorbs a 2-byte header of [sourceID, len(data)] followed by data itself
// — this framing is part of the reproducibility contract that makes two
// accumulators fed identical events produce identical output.
//
// Callers are responsible for distributing events across pools; round-robin
// per source is a reasonable default policy, but it is not enforced here.
func (a *Accumulator) AddEvent(sourceID byte, poolIndex int, data []byte) {
	if len(data) == 0 || len(data) > 32 {
		panic("fortuna: event data must be 1..32 bytes")
	}
	if poolIndex < 0 || poolIndex >= PoolCount {
		panic("fortuna: pool index out of range")
	}

	p := a.pools[poolIndex]
	p.input([]byte{sourceID, byte(len(data))})
	p.input(data)
}

// RandomData fills out with pseudo-random bytes, reseeding the generator
// first if the gating conditions are met. It returns ErrNotSeeded, leaving
// out untouched, if the accumulator has never reseeded by the time this
// call's gating check runs.
func (a *Accumulator) RandomData(out []byte) error {
	a.maybeReseed()

	if a.reseedCounter == 0 {
		return ErrNotSeeded
	}

	for len(out) > 0 {
		n := len(out)
		if n > MaxGenerateSize {
			n = MaxGenerateSize
		}
		a.generator.pseudoRandomData(out[:n])
		out = out[n:]
	}
	return nil
}

// Seeded reports whether the accumulator has reseeded its generator at
// least once. It does not itself trigger a reseed check; callers wanting an
// up-to-date answer should call RandomData (or AddEvent followed by
// RandomData) first.
func (a *Accumulator) Seeded() bool {
	return a.reseedCounter != 0
}

// ReseedCount returns the number of reseeds the accumulator has performed so
// far.
func (a *Accumulator) ReseedCount() uint32 {
	return a.reseedCounter
}

// Pool0FillBytes returns the number of bytes pool 0 has absorbed since its
// last harvest — the quantity the reseed gate compares against
// MinPoolSize. Exposed for callers that want to report it, e.g. as a
// Prometheus gauge.
func (a *Accumulator) Pool0FillBytes() int {
	return a.pools[0].length
}

// maybeReseed implements the Fortuna reseed gate and the 2^i pool-selection
// schedule. A reseed fires iff pool 0 has absorbed at least MinPoolSize
// bytes, and either this is the very first reseed or more than
// ReseedMinIntervalMs has elapsed since the last one. When it fires, pool i
// participates iff reseedCounter (after incrementing) is divisible by 2^i —
// pool 0 every time, pool 1 every other time, pool 2 every fourth, and so
// on — so a compromise of the generator key is always eventually outpaced
// by a pool that has absorbed exponentially more entropy than an attacker
// can track.
func (a *Accumulator) maybeReseed() {
	if a.pools[0].length < MinPoolSize {
		return
	}
	if a.reseedCounter != 0 && a.timer.ElapsedMs() <= ReseedMinIntervalMs {
		return
	}

	a.reseedCounter++
	a.timer.Reset()

	var seed []byte
	for i := 0; i < PoolCount; i++ {
		if a.reseedCounter%(1<<uint(i)) != 0 {
			break
		}
		seed = append(seed, a.pools[i].harvest(a.newHash)...)
	}

	a.generator.reseed(seed)
}
