// Package frame implements the self-describing container written into a
// carrier: a fixed magic signature, a big-endian uint32 length, and the data.
//
//	offset  size  field
//	0       6     magic "NXSTEG"
//	6       4     length L
//	10      L     data
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	MagicSize  = 6
	LengthSize = 4
	HeaderSize = MagicSize + LengthSize
)

// Magic identifies an nxsteg container
var Magic = [MagicSize]byte{'N', 'X', 'S', 'T', 'E', 'G'}

var (
	ErrInvalidFormat = errors.New("not a recognized stego container")
	ErrTruncatedData = errors.New("truncated data")
	ErrFrameTooLarge = errors.New("data too large for frame")
)

// Size returns the framed length of an n-byte payload
func Size(n int) int {
	return HeaderSize + n
}

// Wrap frames data as magic || length || data
func Wrap(data []byte) ([]byte, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}

	out := make([]byte, Size(len(data)))
	copy(out, Magic[:])
	binary.BigEndian.PutUint32(out[MagicSize:HeaderSize], uint32(len(data)))
	copy(out[HeaderSize:], data)
	return out, nil
}

// ReadHeader validates the magic and returns the declared data length.
// raw needs to hold at least HeaderSize bytes.
func ReadHeader(raw []byte) (uint32, error) {
	if len(raw) < MagicSize || !bytes.Equal(raw[:MagicSize], Magic[:]) {
		return 0, ErrInvalidFormat
	}
	if len(raw) < HeaderSize {
		return 0, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedData, HeaderSize, len(raw))
	}
	return binary.BigEndian.Uint32(raw[MagicSize:HeaderSize]), nil
}

// Unwrap validates a frame and returns a copy of its data.
// Bytes past the declared length are ignored.
func Unwrap(raw []byte) ([]byte, error) {
	length, err := ReadHeader(raw)
	if err != nil {
		return nil, err
	}

	remaining := uint64(len(raw) - HeaderSize)
	if uint64(length) > remaining {
		return nil, fmt.Errorf("%w: declared %d bytes, have %d", ErrTruncatedData, length, remaining)
	}

	data := make([]byte, length)
	copy(data, raw[HeaderSize:HeaderSize+int(length)])
	return data, nil
}
