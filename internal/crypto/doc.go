// Package crypto provides the password envelope used by nxsteg.
//
// Encryption uses AES-256-CBC with PKCS#7 padding and:
//   - 32-byte key derived from password via PBKDF2
//   - 16-byte random salt and 16-byte random IV per encryption
//   - Output layout: salt || iv || ciphertext
//
// Key derivation uses PBKDF2-HMAC-SHA256 with 65,536 iterations.
//
// CBC is not authenticated. A wrong password is detected only when the
// decrypted padding is invalid; otherwise Open returns garbage.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Password.Clear() when done with a password
package crypto
