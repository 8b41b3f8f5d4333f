package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"fmt"
)

var (
	ErrMalformedInput = errors.New("malformed encrypted payload")
	ErrAuthFailed     = errors.New("decryption failed: wrong password or corrupted data")
	ErrInvalidKeySize = errors.New("invalid key size")
	ErrInvalidIVSize  = errors.New("invalid iv size")
)

// SymmetricCipher encrypts and decrypts with an explicit key and IV
type SymmetricCipher interface {
	Encrypt(key, iv, plaintext []byte) ([]byte, error)
	Decrypt(key, iv, ciphertext []byte) ([]byte, error)
}

// AESCBC implements SymmetricCipher with AES in CBC mode and PKCS#7 padding
type AESCBC struct{}

// Encrypt pads plaintext to the block size and encrypts it.
// The output length is always a positive multiple of aes.BlockSize.
func (AESCBC) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(padded, padded)
	return padded, nil
}

// Decrypt decrypts ciphertext and strips the padding.
// Invalid padding is reported as ErrAuthFailed.
func (AESCBC) Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of %d", ErrMalformedInput, len(ciphertext), aes.BlockSize)
	}

	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		ClearBytes(plain)
		return nil, err
	}
	return unpadded, nil
}

func newBlock(key, iv []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), aes.BlockSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return block, nil
}

// pkcs7Pad returns a new slice; a full block of padding is added when
// len(data) is already aligned.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	copy(out[len(data):], bytes.Repeat([]byte{byte(n)}, n))
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrAuthFailed
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrAuthFailed
	}

	want := bytes.Repeat([]byte{byte(n)}, n)
	if subtle.ConstantTimeCompare(data[len(data)-n:], want) != 1 {
		return nil, ErrAuthFailed
	}
	return data[:len(data)-n], nil
}
