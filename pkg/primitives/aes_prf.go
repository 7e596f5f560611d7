// Package primitives provides the concrete PRF, Hash and Timer
// collaborators pkg/fortuna requires but deliberately does not implement
// itself: AES-256 as the block PRF, SHA-256d as the hash, and a
// monotonic-clock timer.
package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/lokey/fortuna-core/pkg/fortuna"
)

// aesPRF adapts crypto/aes to fortuna.PRF: a keyed encryption of one
// 128-bit block under AES-256.
type aesPRF struct {
	block cipher.Block
}

// NewAES256PRF is a fortuna.PRFFactory: it returns a fortuna.PRF backed by
// AES-256. It panics if key is not exactly 32 bytes, which cannot happen
// when called from pkg/fortuna since it always supplies a fortuna.KeyLength
// key.
func NewAES256PRF(key []byte) fortuna.PRF {
	if len(key) != fortuna.KeyLength {
		panic(fmt.Sprintf("primitives: AES-256 key must be %d bytes, got %d", fortuna.KeyLength, len(key)))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(fmt.Sprintf("primitives: aes.NewCipher: %v", err))
	}
	return &aesPRF{block: block}
}

func (p *aesPRF) Apply(block []byte) {
	p.block.Encrypt(block, block)
}
