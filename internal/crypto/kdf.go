package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize          = 16    // Salt size in bytes
	IVSize            = 16    // CBC initialization vector size
	KeySize           = 32    // AES-256 key size
	DefaultIterations = 65536 // PBKDF2 iterations
)

// Params holds the key derivation and envelope sizes.
type Params struct {
	Iterations int
	KeySize    int
	SaltSize   int
	IVSize     int
}

// DefaultParams returns the parameters every nxsteg container is written with
func DefaultParams() Params {
	return Params{
		Iterations: DefaultIterations,
		KeySize:    KeySize,
		SaltSize:   SaltSize,
		IVSize:     IVSize,
	}
}

// HeaderSize is the number of bytes prepended to every ciphertext
func (p Params) HeaderSize() int {
	return p.SaltSize + p.IVSize
}

// DeriveKey derives an encryption key from a password and salt.
// The same inputs always produce the same key.
func DeriveKey(password, salt []byte, p Params) []byte {
	return pbkdf2.Key(password, salt, p.Iterations, p.KeySize, sha256.New)
}
