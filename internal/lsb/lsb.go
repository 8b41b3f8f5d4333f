// Package lsb packs bytes into, and reads them back from, the least
// significant bits of a carrier byte sequence. Each carrier byte holds one
// bit; bits are written most-significant first.
package lsb

import (
	"errors"
	"fmt"

	"github.com/illarion/nxsteg/internal/frame"
)

var (
	ErrCapacityExceeded = errors.New("payload too large for carrier")

	// ErrTruncatedData is returned when the carrier holds fewer bits than requested
	ErrTruncatedData = fmt.Errorf("carrier too small: %w", frame.ErrTruncatedData)
)

// Capacity returns how many bytes a carrier of carrierLen bytes can hold
func Capacity(carrierLen int) int {
	return carrierLen / 8
}

// Embed overwrites the LSB of the first len(data)*8 carrier bytes with the
// bits of data. The carrier is left unmodified when data does not fit.
func Embed(carrier, data []byte) error {
	if len(data) > Capacity(len(carrier)) {
		return fmt.Errorf("%w: need %d bits, carrier holds %d", ErrCapacityExceeded, len(data)*8, len(carrier))
	}

	i := 0
	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			carrier[i] = carrier[i]&0xFE | (b>>uint(shift))&1
			i++
		}
	}
	return nil
}

// Extract decodes n bytes from the first n*8 carrier bytes
func Extract(carrier []byte, n int) ([]byte, error) {
	if n < 0 || n > Capacity(len(carrier)) {
		return nil, fmt.Errorf("%w: need %d bytes, carrier holds %d", ErrTruncatedData, n, Capacity(len(carrier)))
	}

	out := make([]byte, n)
	extractInto(out, carrier)
	return out, nil
}

// ExtractAll decodes every complete byte stored in the carrier
func ExtractAll(carrier []byte) []byte {
	out := make([]byte, Capacity(len(carrier)))
	extractInto(out, carrier)
	return out
}

// ExtractFrame decodes a frame incrementally: the header first, then only
// as many carrier bytes as the declared length requires.
func ExtractFrame(carrier []byte) ([]byte, error) {
	header, err := Extract(carrier, min(frame.HeaderSize, Capacity(len(carrier))))
	if err != nil {
		return nil, err
	}

	length, err := frame.ReadHeader(header)
	if err != nil {
		return nil, err
	}

	total := uint64(frame.HeaderSize) + uint64(length)
	if total > uint64(Capacity(len(carrier))) {
		return nil, fmt.Errorf("%w: declared %d bytes, carrier holds %d", ErrTruncatedData, length, Capacity(len(carrier))-frame.HeaderSize)
	}

	return Extract(carrier, int(total))
}

func extractInto(out, carrier []byte) {
	for i := range out {
		var b byte
		for _, c := range carrier[i*8 : i*8+8] {
			b = b<<1 | c&1
		}
		out[i] = b
	}
}
