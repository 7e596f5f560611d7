package primitives

import (
	"crypto/sha256"
	"hash"
)

// sha256d implements hash.Hash as SHA-256 applied twice: Sum returns
// SHA256(SHA256(absorbed bytes)). Pool digests and Generator reseeds both
// rely on this double hash for bit-exact compatibility with the reference
// Fortuna test vectors; a single SHA-256 would not match them.
type sha256d struct {
	inner hash.Hash
}

// NewSHA256d is a fortuna.HashFactory: each call returns a fresh SHA-256d
// instance.
func NewSHA256d() hash.Hash {
	return &sha256d{inner: sha256.New()}
}

func (h *sha256d) Write(p []byte) (int, error) {
	return h.inner.Write(p)
}

func (h *sha256d) Sum(b []byte) []byte {
	first := h.inner.Sum(nil)
	second := sha256.Sum256(first)
	return append(b, second[:]...)
}

func (h *sha256d) Reset() {
	h.inner.Reset()
}

func (h *sha256d) Size() int {
	return h.inner.Size()
}

func (h *sha256d) BlockSize() int {
	return h.inner.BlockSize()
}
