// Package fortuna implements the core of the Fortuna cryptographically
// secure pseudo-random number generator, as designed by Niels Ferguson and
// Bruce Schneier.
//
// Fortuna is a two-layer design. The Generator stretches a 32-byte secret
// key into arbitrary pseudo-random output by running a block cipher in
// counter mode, rekeying itself after every request so that a later
// compromise of its state cannot reveal output it has already produced. The
// Accumulator gathers entropy from many asynchronous sources into 32 pools
// and periodically reseeds the Generator on a schedule under which pool i
// participates roughly once every 2^i reseeds, guaranteeing recovery from a
// state compromise given enough fresh entropy.
//
// This package does not implement the block cipher or hash function itself;
// callers supply them through the PRF and Hash interfaces. It does not seed
// itself from OS entropy and does not persist state across restarts — both
// are the caller's responsibility. The package is not safe for concurrent
// use; a caller sharing one Accumulator across goroutines must serialize
// access itself (see pkg/api for an example using a mutex).
package fortuna
