package crypto

// Password is an optional secret. The zero value is an absent password,
// which disables encryption entirely. An empty but present password is
// a valid (weak) key source.
type Password struct {
	value   []byte
	present bool
}

// NoPassword returns the absent password
func NoPassword() Password {
	return Password{}
}

// NewPassword wraps b as a present password. b is not copied.
func NewPassword(b []byte) Password {
	return Password{value: b, present: true}
}

// Present reports whether a password was supplied
func (p Password) Present() bool {
	return p.present
}

// Bytes returns the raw password bytes
func (p Password) Bytes() []byte {
	return p.value
}

// Clear zeroes the password bytes
func (p Password) Clear() {
	ClearBytes(p.value)
}
