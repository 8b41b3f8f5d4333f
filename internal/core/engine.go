package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"

	"github.com/illarion/nxsteg/internal/crypto"
	"github.com/illarion/nxsteg/internal/frame"
	"github.com/illarion/nxsteg/internal/imageio"
	"github.com/illarion/nxsteg/internal/lsb"
	"github.com/illarion/nxsteg/internal/pixel"
)

// Engine runs the embed and extract pipeline
type Engine struct {
	envelope *crypto.Envelope
}

// Option configures an Engine
type Option func(*Engine)

// WithEnvelope replaces the default AES-256-CBC envelope
func WithEnvelope(env *crypto.Envelope) Option {
	return func(e *Engine) {
		e.envelope = env
	}
}

// New creates an Engine with the default envelope
func New(opts ...Option) *Engine {
	e := &Engine{envelope: crypto.NewEnvelope()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report describes a completed embed
type Report struct {
	Width        int
	Height       int
	CarrierBytes int    // channel bytes available
	FrameBytes   int    // bytes written into the carrier
	PayloadBytes int    // plaintext payload size
	PayloadHash  string // hex SHA-256 of the plaintext payload
	Encrypted    bool
}

// UsedPercent returns how much of the carrier's capacity the frame occupies
func (r *Report) UsedPercent() float64 {
	capacity := lsb.Capacity(r.CarrierBytes)
	if capacity == 0 {
		return 0
	}
	return float64(r.FrameBytes) * 100 / float64(capacity)
}

// HashPayload returns the hex SHA-256 of data
func HashPayload(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Embed hides payload in carrier and returns the stego image. carrier is
// not modified. Nothing is written when the payload does not fit.
func (e *Engine) Embed(carrier image.Image, payload []byte, password crypto.Password) (*image.NRGBA, *Report, error) {
	bounds := carrier.Bounds()
	channels := pixel.ToChannelBytes(carrier)

	// Reject oversized payloads before paying for key derivation
	if !e.Fits(len(payload), len(channels), password.Present()) {
		return nil, nil, fmt.Errorf("%w: %d byte payload, carrier holds %d frame bytes",
			lsb.ErrCapacityExceeded, len(payload), lsb.Capacity(len(channels)))
	}

	sealed, err := e.envelope.Seal(payload, password)
	if err != nil {
		return nil, nil, err
	}

	framed, err := frame.Wrap(sealed)
	if err != nil {
		return nil, nil, err
	}

	if err := lsb.Embed(channels, framed); err != nil {
		return nil, nil, err
	}

	out, err := pixel.FromChannelBytes(channels, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, nil, err
	}

	return out, &Report{
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		CarrierBytes: len(channels),
		FrameBytes:   len(framed),
		PayloadBytes: len(payload),
		PayloadHash:  HashPayload(payload),
		Encrypted:    password.Present(),
	}, nil
}

// Extract recovers the payload hidden in img
func (e *Engine) Extract(img image.Image, password crypto.Password) ([]byte, error) {
	channels := pixel.ToChannelBytes(img)

	raw, err := lsb.ExtractFrame(channels)
	if err != nil {
		return nil, err
	}

	sealed, err := frame.Unwrap(raw)
	if err != nil {
		return nil, err
	}

	return e.envelope.Open(sealed, password)
}

// EmbedFile loads the carrier at carrierPath, hides payload in it and
// saves the result to outPath. The output is only created once every bit
// has been written.
func (e *Engine) EmbedFile(ctx context.Context, carrierPath string, payload []byte, outPath string, password crypto.Password) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fail on the output format before spending time on key derivation
	codec, err := imageio.ForPath(outPath)
	if err != nil {
		return nil, err
	}
	if !codec.Lossless() {
		return nil, fmt.Errorf("%w: %s output would destroy embedded data (use .png or .bmp)", imageio.ErrUnsupportedFormat, codec.Name())
	}

	carrier, _, err := imageio.Load(carrierPath)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, report, err := e.Embed(carrier, payload, password)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := imageio.Save(outPath, out); err != nil {
		return nil, err
	}
	return report, nil
}

// ExtractFile loads the stego image at path and recovers its payload
func (e *Engine) ExtractFile(ctx context.Context, path string, password crypto.Password) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.Extract(img, password)
}

// CapacityInfo describes how much a carrier can hold
type CapacityInfo struct {
	Width        int
	Height       int
	CarrierBytes int // channel bytes, one hidden bit each
	FrameBytes   int // largest frame the carrier holds
	MaxPlain     int // largest payload without a password
	MaxEncrypted int // largest payload with a password
}

// Capacity reports the payload limits of img
func (e *Engine) Capacity(img image.Image) CapacityInfo {
	bounds := img.Bounds()
	carrierBytes := pixel.Len(bounds.Dx(), bounds.Dy())
	frameBytes := lsb.Capacity(carrierBytes)

	info := CapacityInfo{
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		CarrierBytes: carrierBytes,
		FrameBytes:   frameBytes,
		MaxPlain:     max(frameBytes-frame.HeaderSize, -1),
		MaxEncrypted: -1,
	}

	// Largest n whose padded ciphertext still fits
	room := frameBytes - frame.HeaderSize - e.envelope.Params.HeaderSize()
	if room >= 16 {
		info.MaxEncrypted = (room/16)*16 - 1
	}
	return info
}

// CapacityFile reports the payload limits of the image at path
func (e *Engine) CapacityFile(path string) (CapacityInfo, error) {
	img, _, err := imageio.Load(path)
	if err != nil {
		return CapacityInfo{}, err
	}
	return e.Capacity(img), nil
}

// Fits reports whether an n-byte payload fits in a carrier of carrierBytes
// channel bytes
func (e *Engine) Fits(n, carrierBytes int, encrypted bool) bool {
	return frame.Size(e.envelope.SealedSize(n, encrypted)) <= lsb.Capacity(carrierBytes)
}
