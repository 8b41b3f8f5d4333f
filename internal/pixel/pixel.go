// Package pixel converts between decoded images and the flat channel byte
// sequence (R, G, B per pixel, row-major, 8 bits per channel) that carries
// the hidden bits.
package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Channels is the number of carrier bytes per pixel
const Channels = 3

var ErrDimensionMismatch = errors.New("channel data does not match image dimensions")

// Len returns the channel byte count of a width x height image
func Len(width, height int) int {
	return width * height * Channels
}

// ToChannelBytes flattens img into R, G, B bytes, row-major. Alpha is
// discarded and deeper color models are reduced to 8 bits per channel.
func ToChannelBytes(img image.Image) []byte {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := make([]byte, Len(width, height))

	switch src := img.(type) {
	case *image.NRGBA:
		p := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, y):]
			for x := 0; x < width; x++ {
				out[p], out[p+1], out[p+2] = row[x*4], row[x*4+1], row[x*4+2]
				p += Channels
			}
		}
	case *image.RGBA:
		if src.Opaque() {
			p := 0
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				row := src.Pix[src.PixOffset(bounds.Min.X, y):]
				for x := 0; x < width; x++ {
					out[p], out[p+1], out[p+2] = row[x*4], row[x*4+1], row[x*4+2]
					p += Channels
				}
			}
			break
		}
		fillGeneric(out, img)
	default:
		fillGeneric(out, img)
	}

	return out
}

func fillGeneric(out []byte, img image.Image) {
	bounds := img.Bounds()
	p := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out[p], out[p+1], out[p+2] = c.R, c.G, c.B
			p += Channels
		}
	}
}

// FromChannelBytes rebuilds an opaque image from channel bytes produced by
// ToChannelBytes
func FromChannelBytes(b []byte, width, height int) (*image.NRGBA, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrDimensionMismatch, width, height)
	}
	if len(b) != Len(width, height) {
		return nil, fmt.Errorf("%w: have %d bytes, %dx%d needs %d", ErrDimensionMismatch, len(b), width, height, Len(width, height))
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, p := 0, 0; i < len(b); i, p = i+Channels, p+4 {
		img.Pix[p] = b[i]
		img.Pix[p+1] = b[i+1]
		img.Pix[p+2] = b[i+2]
		img.Pix[p+3] = 0xFF
	}
	return img, nil
}
