package pixel

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func gradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x + y), A: 0xFF})
		}
	}
	return img
}

func TestToChannelBytes_Layout(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 4, G: 5, B: 6, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 7, G: 8, B: 9, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 11, B: 12, A: 0})

	got := ToChannelBytes(img)
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if !bytes.Equal(got, want) {
		t.Errorf("ToChannelBytes() = %v, want %v", got, want)
	}
}

func TestToChannelBytes_ImageTypesAgree(t *testing.T) {
	src := gradient(5, 4)
	want := ToChannelBytes(src)

	rgba := image.NewRGBA(src.Bounds())
	rgba64 := image.NewRGBA64(src.Bounds())
	nrgba64 := image.NewNRGBA64(src.Bounds())
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			rgba.Set(x, y, src.At(x, y))
			rgba64.Set(x, y, src.At(x, y))
			nrgba64.Set(x, y, src.At(x, y))
		}
	}

	tests := []struct {
		name string
		img  image.Image
	}{
		{"rgba", rgba},
		{"rgba64", rgba64},
		{"nrgba64", nrgba64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToChannelBytes(tt.img); !bytes.Equal(got, want) {
				t.Errorf("ToChannelBytes() = %v, want %v", got, want)
			}
		})
	}
}

func TestToChannelBytes_SubImage(t *testing.T) {
	src := gradient(6, 6)
	sub := src.SubImage(image.Rect(2, 3, 5, 5))

	got := ToChannelBytes(sub)
	if len(got) != Len(3, 2) {
		t.Fatalf("length = %d, want %d", len(got), Len(3, 2))
	}

	c := src.NRGBAAt(2, 3)
	if got[0] != c.R || got[1] != c.G || got[2] != c.B {
		t.Errorf("first pixel = %v, want %v", got[:3], c)
	}
}

func TestRoundTrip(t *testing.T) {
	src := gradient(7, 3)
	b := ToChannelBytes(src)

	img, err := FromChannelBytes(b, 7, 3)
	if err != nil {
		t.Fatalf("FromChannelBytes() error = %v", err)
	}
	if img.Bounds().Dx() != 7 || img.Bounds().Dy() != 3 {
		t.Errorf("bounds = %v, want 7x3", img.Bounds())
	}
	if !bytes.Equal(ToChannelBytes(img), b) {
		t.Error("round trip changed channel bytes")
	}
	if !img.Opaque() {
		t.Error("rebuilt image should be opaque")
	}
}

func TestFromChannelBytes_DimensionMismatch(t *testing.T) {
	tests := []struct {
		name          string
		n             int
		width, height int
	}{
		{"too short", 47, 4, 4},
		{"too long", 49, 4, 4},
		{"negative", 0, -1, 4},
		{"nonzero for empty image", 3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromChannelBytes(make([]byte, tt.n), tt.width, tt.height)
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("FromChannelBytes() error = %v, want ErrDimensionMismatch", err)
			}
		})
	}
}

func TestEmptyImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if got := ToChannelBytes(img); len(got) != 0 {
		t.Errorf("ToChannelBytes() length = %d, want 0", len(got))
	}
	if _, err := FromChannelBytes(nil, 0, 0); err != nil {
		t.Errorf("FromChannelBytes() error = %v", err)
	}
}
