package fortuna

import "errors"

// ErrNotSeeded is returned by Accumulator.RandomData when no reseed has
// ever occurred — either no events have been added yet, or pool 0 has not
// yet accumulated MinPoolSize bytes. No state is mutated when this error is
// returned; the caller should add more entropy events and retry.
var ErrNotSeeded = errors.New("fortuna: accumulator not seeded yet")
