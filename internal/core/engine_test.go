package core

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/illarion/nxsteg/internal/crypto"
	"github.com/illarion/nxsteg/internal/frame"
	"github.com/illarion/nxsteg/internal/imageio"
	"github.com/illarion/nxsteg/internal/lsb"
)

func testEngine(r io.Reader) *Engine {
	p := crypto.DefaultParams()
	p.Iterations = 1000
	return New(WithEnvelope(&crypto.Envelope{Cipher: crypto.AESCBC{}, Rand: r, Params: p}))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func noisyImage(t *testing.T, width, height int) *image.NRGBA {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if _, err := rand.Read(img.Pix); err != nil {
		t.Fatal(err)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	return img
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestEmbedExtract_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		password crypto.Password
	}{
		{"empty, no password", []byte{}, crypto.NoPassword()},
		{"text, no password", []byte("meet me at the usual place"), crypto.NoPassword()},
		{"empty, password", []byte{}, crypto.NewPassword([]byte("pw"))},
		{"text, password", []byte("meet me at the usual place"), crypto.NewPassword([]byte("correct horse"))},
		{"binary, empty password", []byte{0, 0xff, 0x10, 0x80}, crypto.NewPassword([]byte{})},
	}

	engine := testEngine(rand.Reader)
	carrier := noisyImage(t, 40, 30)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stego, report, err := engine.Embed(carrier, tt.payload, tt.password)
			if err != nil {
				t.Fatalf("Embed() error = %v", err)
			}
			if report.Encrypted != tt.password.Present() {
				t.Errorf("report.Encrypted = %v, want %v", report.Encrypted, tt.password.Present())
			}
			if report.PayloadBytes != len(tt.payload) {
				t.Errorf("report.PayloadBytes = %d, want %d", report.PayloadBytes, len(tt.payload))
			}

			got, err := engine.Extract(stego, tt.password)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("Extract() = %q, want %q", got, tt.payload)
			}
		})
	}
}

func TestEmbed_LargeRandomPayload(t *testing.T) {
	engine := testEngine(rand.Reader)
	carrier := noisyImage(t, 200, 150)
	capacity := engine.Capacity(carrier)
	payload := randomBytes(t, capacity.MaxEncrypted)

	stego, _, err := engine.Embed(carrier, payload, crypto.NewPassword([]byte("secret")))
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	got, err := engine.Extract(stego, crypto.NewPassword([]byte("secret")))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("payload mismatch after round trip")
	}
}

func TestExtract_WrongPassword(t *testing.T) {
	engine := testEngine(rand.Reader)
	carrier := noisyImage(t, 50, 50)
	payload := []byte("only for the right password")

	for i := 0; i < 8; i++ {
		stego, _, err := engine.Embed(carrier, payload, crypto.NewPassword([]byte("correct")))
		if err != nil {
			t.Fatalf("Embed() error = %v", err)
		}

		got, err := engine.Extract(stego, crypto.NewPassword([]byte("wrong")))
		if err != nil {
			if !errors.Is(err, crypto.ErrAuthFailed) {
				t.Errorf("Extract() error = %v, want ErrAuthFailed", err)
			}
			continue
		}
		if bytes.Equal(got, payload) {
			t.Fatal("wrong password returned the original payload")
		}
	}
}

func TestExtract_PasswordOnPlainContainer(t *testing.T) {
	engine := testEngine(rand.Reader)
	stego, _, err := engine.Embed(noisyImage(t, 20, 20), []byte("hi"), crypto.NoPassword())
	if err != nil {
		t.Fatal(err)
	}

	_, err = engine.Extract(stego, crypto.NewPassword([]byte("pw")))
	if !errors.Is(err, crypto.ErrMalformedInput) {
		t.Errorf("Extract() error = %v, want ErrMalformedInput", err)
	}
}

func TestExtract_NoPasswordOnEncryptedContainer(t *testing.T) {
	engine := testEngine(rand.Reader)
	payload := []byte("secret stuff")
	stego, _, err := engine.Embed(noisyImage(t, 20, 20), payload, crypto.NewPassword([]byte("pw")))
	if err != nil {
		t.Fatal(err)
	}

	got, err := engine.Extract(stego, crypto.NoPassword())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if bytes.Equal(got, payload) {
		t.Error("encrypted payload readable without password")
	}
	if len(got) != crypto.SaltSize+crypto.IVSize+16 {
		t.Errorf("raw envelope length = %d, want %d", len(got), crypto.SaltSize+crypto.IVSize+16)
	}
}

func TestEmbed_TinyCarrierScenario(t *testing.T) {
	// 4x4 carrier holds 48 bits; "hi" needs a 12-byte frame = 96 bits
	engine := testEngine(rand.Reader)
	_, _, err := engine.Embed(noisyImage(t, 4, 4), []byte("hi"), crypto.NoPassword())
	if !errors.Is(err, lsb.ErrCapacityExceeded) {
		t.Errorf("Embed() error = %v, want ErrCapacityExceeded", err)
	}
}

func TestEmbed_HundredByHundredScenario(t *testing.T) {
	engine := testEngine(rand.Reader)
	carrier := noisyImage(t, 100, 100)
	payload := []byte("0123456789")

	stego, report, err := engine.Embed(carrier, payload, crypto.NoPassword())
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if report.CarrierBytes != 30000 {
		t.Errorf("CarrierBytes = %d, want 30000", report.CarrierBytes)
	}
	if report.FrameBytes != 20 {
		t.Errorf("FrameBytes = %d, want 20", report.FrameBytes)
	}

	got, err := engine.Extract(stego, crypto.NoPassword())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Extract() = %q, want %q", got, payload)
	}
}

func TestEmbed_CapacityBoundary(t *testing.T) {
	// 8x8 = 192 channel bytes = 24 frame bytes = 14-byte payload exactly
	engine := testEngine(rand.Reader)
	carrier := noisyImage(t, 8, 8)
	original := append([]byte(nil), carrier.Pix...)

	if _, _, err := engine.Embed(carrier, make([]byte, 14), crypto.NoPassword()); err != nil {
		t.Fatalf("exact fit: Embed() error = %v", err)
	}

	_, _, err := engine.Embed(carrier, make([]byte, 15), crypto.NoPassword())
	if !errors.Is(err, lsb.ErrCapacityExceeded) {
		t.Fatalf("one byte over: Embed() error = %v, want ErrCapacityExceeded", err)
	}
	if !bytes.Equal(carrier.Pix, original) {
		t.Error("Embed modified the carrier image")
	}
}

func TestEmbed_EncryptedCapacityBoundary(t *testing.T) {
	engine := testEngine(rand.Reader)
	password := crypto.NewPassword([]byte("pw"))

	for _, size := range [][2]int{{20, 20}, {33, 17}} {
		carrier := noisyImage(t, size[0], size[1])
		original := append([]byte(nil), carrier.Pix...)

		info := engine.Capacity(carrier)
		if info.MaxEncrypted < 0 {
			t.Fatalf("%dx%d: no room for an encrypted payload", size[0], size[1])
		}

		payload := bytes.Repeat([]byte{0x5a}, info.MaxEncrypted)
		stego, _, err := engine.Embed(carrier, payload, password)
		if err != nil {
			t.Fatalf("%dx%d: Embed(%d bytes) error = %v", size[0], size[1], info.MaxEncrypted, err)
		}
		got, err := engine.Extract(stego, password)
		if err != nil {
			t.Fatalf("%dx%d: Extract() error = %v", size[0], size[1], err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("%dx%d: payload mismatch at the encrypted limit", size[0], size[1])
		}

		_, _, err = engine.Embed(carrier, append(payload, 0x5a), password)
		if !errors.Is(err, lsb.ErrCapacityExceeded) {
			t.Fatalf("%dx%d: Embed(%d bytes) error = %v, want ErrCapacityExceeded", size[0], size[1], info.MaxEncrypted+1, err)
		}
		if !bytes.Equal(carrier.Pix, original) {
			t.Errorf("%dx%d: Embed modified the carrier image", size[0], size[1])
		}
	}
}

func TestEmbed_RejectsOversizedBeforeEncrypting(t *testing.T) {
	// A failing random source shows whether sealing was attempted
	engine := testEngine(failingReader{})

	_, _, err := engine.Embed(noisyImage(t, 4, 4), []byte("hi"), crypto.NewPassword([]byte("pw")))
	if !errors.Is(err, lsb.ErrCapacityExceeded) {
		t.Fatalf("Embed() error = %v, want ErrCapacityExceeded", err)
	}
}

func TestEmbed_PreservesHighBits(t *testing.T) {
	engine := testEngine(rand.Reader)
	carrier := noisyImage(t, 30, 30)

	stego, _, err := engine.Embed(carrier, []byte("only the lowest bit changes"), crypto.NewPassword([]byte("pw")))
	if err != nil {
		t.Fatal(err)
	}

	changed := 0
	for i := range carrier.Pix {
		if i%4 == 3 {
			continue
		}
		if carrier.Pix[i]&0xFE != stego.Pix[i]&0xFE {
			t.Fatalf("byte %d: high bits changed", i)
		}
		if carrier.Pix[i] != stego.Pix[i] {
			changed++
		}
	}
	if changed == 0 {
		t.Error("no carrier bits changed")
	}
}

func TestEmbed_DeterministicWithFixedRandomness(t *testing.T) {
	fixed := func() io.Reader { return bytes.NewReader(bytes.Repeat([]byte{0x5a}, 64)) }
	carrier := noisyImage(t, 20, 20)
	pw := crypto.NewPassword([]byte("pw"))

	a, _, err := testEngine(fixed()).Embed(carrier, []byte("same"), pw)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := testEngine(fixed()).Embed(carrier, []byte("same"), pw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical inputs and randomness produced different images")
	}
}

func TestEmbed_TranslucentCarrier(t *testing.T) {
	engine := testEngine(rand.Reader)
	carrier := noisyImage(t, 20, 20)
	for i := 3; i < len(carrier.Pix); i += 4 {
		carrier.Pix[i] = 0x40
	}

	stego, _, err := engine.Embed(carrier, []byte("alpha is dropped"), crypto.NoPassword())
	if err != nil {
		t.Fatal(err)
	}
	if !stego.Opaque() {
		t.Error("stego image should be opaque")
	}
	got, err := engine.Extract(stego, crypto.NoPassword())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if string(got) != "alpha is dropped" {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtract_NotAContainer(t *testing.T) {
	engine := testEngine(rand.Reader)

	tests := []struct {
		name string
		img  image.Image
	}{
		{"empty image", image.NewNRGBA(image.Rect(0, 0, 0, 0))},
		{"blank image", image.NewNRGBA(image.Rect(0, 0, 10, 10))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := engine.Extract(tt.img, crypto.NoPassword()); !errors.Is(err, frame.ErrInvalidFormat) {
				t.Errorf("Extract() error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	engine := testEngine(rand.Reader)

	tests := []struct {
		name          string
		width, height int
	}{
		{"tiny", 4, 4},
		{"small", 10, 10},
		{"odd", 33, 17},
		{"large", 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := engine.Capacity(image.NewNRGBA(image.Rect(0, 0, tt.width, tt.height)))
			if info.CarrierBytes != tt.width*tt.height*3 {
				t.Errorf("CarrierBytes = %d, want %d", info.CarrierBytes, tt.width*tt.height*3)
			}

			if info.MaxPlain >= 0 {
				if !engine.Fits(info.MaxPlain, info.CarrierBytes, false) {
					t.Errorf("MaxPlain %d does not fit", info.MaxPlain)
				}
			}
			if engine.Fits(info.MaxPlain+1, info.CarrierBytes, false) {
				t.Errorf("MaxPlain+1 = %d fits", info.MaxPlain+1)
			}

			if info.MaxEncrypted >= 0 {
				if !engine.Fits(info.MaxEncrypted, info.CarrierBytes, true) {
					t.Errorf("MaxEncrypted %d does not fit", info.MaxEncrypted)
				}
			}
			if engine.Fits(info.MaxEncrypted+1, info.CarrierBytes, true) {
				t.Errorf("MaxEncrypted+1 = %d fits", info.MaxEncrypted+1)
			}
		})
	}
}

func TestEmbedFile_ExtractFile(t *testing.T) {
	for _, ext := range []string{".png", ".bmp"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			carrierPath := filepath.Join(dir, "carrier"+ext)
			outPath := filepath.Join(dir, "stego"+ext)

			if err := imageio.Save(carrierPath, noisyImage(t, 64, 48)); err != nil {
				t.Fatal(err)
			}

			engine := testEngine(rand.Reader)
			ctx := context.Background()
			pw := crypto.NewPassword([]byte("file password"))
			payload := []byte("hidden inside a file on disk")

			report, err := engine.EmbedFile(ctx, carrierPath, payload, outPath, pw)
			if err != nil {
				t.Fatalf("EmbedFile() error = %v", err)
			}
			if report.Width != 64 || report.Height != 48 {
				t.Errorf("report dimensions = %dx%d, want 64x48", report.Width, report.Height)
			}

			got, err := engine.ExtractFile(ctx, outPath, pw)
			if err != nil {
				t.Fatalf("ExtractFile() error = %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("ExtractFile() = %q, want %q", got, payload)
			}
		})
	}
}

func TestEmbedFile_NoOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	carrierPath := filepath.Join(dir, "carrier.png")
	if err := imageio.Save(carrierPath, noisyImage(t, 4, 4)); err != nil {
		t.Fatal(err)
	}
	engine := testEngine(rand.Reader)

	tests := []struct {
		name    string
		out     string
		wantErr error
	}{
		{"capacity exceeded", "out.png", lsb.ErrCapacityExceeded},
		{"lossy output", "out.jpg", imageio.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outPath := filepath.Join(dir, tt.out)
			_, err := engine.EmbedFile(context.Background(), carrierPath, []byte("too much for 4x4"), outPath, crypto.NoPassword())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("EmbedFile() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := os.Stat(outPath); !os.IsNotExist(err) {
				t.Error("output file should not exist")
			}
		})
	}
}

func TestEmbedFile_Errors(t *testing.T) {
	dir := t.TempDir()
	engine := testEngine(rand.Reader)

	_, err := engine.EmbedFile(context.Background(), filepath.Join(dir, "missing.png"), []byte("x"), filepath.Join(dir, "out.png"), crypto.NoPassword())
	if !errors.Is(err, imageio.ErrUnreadableImage) {
		t.Errorf("missing carrier: error = %v, want ErrUnreadableImage", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.EmbedFile(ctx, filepath.Join(dir, "missing.png"), []byte("x"), filepath.Join(dir, "out.png"), crypto.NoPassword())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("canceled context: error = %v, want context.Canceled", err)
	}

	_, err = engine.ExtractFile(ctx, filepath.Join(dir, "missing.png"), crypto.NoPassword())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("canceled context: error = %v, want context.Canceled", err)
	}
}
