// Package imageio loads carrier images and writes stego images.
//
// Only lossless formats are written: PNG and BMP. JPEG and GIF carriers can
// be read, but the result must be saved as PNG or BMP since a lossy or
// palette re-encode destroys the embedded bits.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

const FilePerm = 0644

var (
	ErrUnreadableImage   = errors.New("unreadable image")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// ImageCodec reads and writes one raster format
type ImageCodec interface {
	Name() string
	Decode(r io.Reader) (image.Image, error)
	Encode(w io.Writer, img image.Image) error
	// Lossless reports whether Encode preserves every channel bit
	Lossless() bool
}

type pngCodec struct{}

func (pngCodec) Name() string                            { return "png" }
func (pngCodec) Decode(r io.Reader) (image.Image, error) { return png.Decode(r) }
func (pngCodec) Lossless() bool                          { return true }

func (pngCodec) Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

type bmpCodec struct{}

func (bmpCodec) Name() string                              { return "bmp" }
func (bmpCodec) Decode(r io.Reader) (image.Image, error)   { return bmp.Decode(r) }
func (bmpCodec) Encode(w io.Writer, img image.Image) error { return bmp.Encode(w, img) }
func (bmpCodec) Lossless() bool                            { return true }

type jpegCodec struct{}

func (jpegCodec) Name() string                            { return "jpeg" }
func (jpegCodec) Decode(r io.Reader) (image.Image, error) { return jpeg.Decode(r) }
func (jpegCodec) Lossless() bool                          { return false }

func (jpegCodec) Encode(io.Writer, image.Image) error {
	return fmt.Errorf("%w: jpeg is lossy", ErrUnsupportedFormat)
}

type gifCodec struct{}

func (gifCodec) Name() string                            { return "gif" }
func (gifCodec) Decode(r io.Reader) (image.Image, error) { return gif.Decode(r) }
func (gifCodec) Lossless() bool                          { return false }

func (gifCodec) Encode(io.Writer, image.Image) error {
	return fmt.Errorf("%w: gif output is palette-quantized", ErrUnsupportedFormat)
}

var (
	PNG  ImageCodec = pngCodec{}
	BMP  ImageCodec = bmpCodec{}
	JPEG ImageCodec = jpegCodec{}
	GIF  ImageCodec = gifCodec{}
)

var byExtension = map[string]ImageCodec{
	".png":  PNG,
	".bmp":  BMP,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".gif":  GIF,
}

// ForPath returns the codec matching the file extension of path
func ForPath(path string) (ImageCodec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	codec, ok := byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return codec, nil
}

// Decode sniffs the format of r and decodes it
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	return img, format, nil
}

// Load reads and decodes the image at path. The format is detected from
// the file content, not the extension.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	defer f.Close()

	img, format, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return img, format, nil
}

// Save encodes img with the codec matching path's extension. The file is
// written to a temporary sibling and renamed into place, so a failed save
// never leaves a partial image behind.
func Save(path string, img image.Image) error {
	codec, err := ForPath(path)
	if err != nil {
		return err
	}
	if !codec.Lossless() {
		return fmt.Errorf("%w: %s output would destroy embedded data (use .png or .bmp)", ErrUnsupportedFormat, codec.Name())
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := codec.Encode(w, img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode %s: %w", codec.Name(), err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Chmod(tmpPath, FilePerm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
