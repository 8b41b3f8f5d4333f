package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Envelope encrypts payloads under a password with a fresh salt and IV
// per call. The zero value is not usable; call NewEnvelope.
type Envelope struct {
	Cipher SymmetricCipher
	Rand   io.Reader
	Params Params
}

// NewEnvelope creates an AES-256-CBC envelope reading entropy from crypto/rand
func NewEnvelope() *Envelope {
	return &Envelope{
		Cipher: AESCBC{},
		Rand:   rand.Reader,
		Params: DefaultParams(),
	}
}

// Seal encrypts data under password and returns salt || iv || ciphertext.
// With an absent password data is returned unchanged.
func (e *Envelope) Seal(data []byte, password Password) ([]byte, error) {
	if !password.Present() {
		return data, nil
	}

	salt, err := GenerateRandom(e.Rand, e.Params.SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	iv, err := GenerateRandom(e.Rand, e.Params.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	key := DeriveKey(password.Bytes(), salt, e.Params)
	defer ClearBytes(key)

	ciphertext, err := e.Cipher.Encrypt(key, iv, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt payload: %w", err)
	}

	out := make([]byte, 0, len(salt)+len(iv)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// Open reverses Seal. With an absent password blob is returned unchanged.
func (e *Envelope) Open(blob []byte, password Password) ([]byte, error) {
	if !password.Present() {
		return blob, nil
	}

	header := e.Params.HeaderSize()
	if len(blob) < header {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedInput, len(blob), header)
	}

	salt := blob[:e.Params.SaltSize]
	iv := blob[e.Params.SaltSize:header]
	ciphertext := blob[header:]

	key := DeriveKey(password.Bytes(), salt, e.Params)
	defer ClearBytes(key)

	return e.Cipher.Decrypt(key, iv, ciphertext)
}

// SealedSize returns the length of Seal's output for an n-byte payload
func (e *Envelope) SealedSize(n int, encrypted bool) int {
	if !encrypted {
		return n
	}
	const block = 16
	return e.Params.HeaderSize() + (n/block+1)*block
}
