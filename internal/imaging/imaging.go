// Package imaging validates uploaded images and prepares them for the
// recognition and vision endpoints.
package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/webp"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

var (
	// ErrEmpty indicates an upload without content.
	ErrEmpty = errors.New("image is empty")
	// ErrTooLarge indicates an upload over the configured size limit.
	ErrTooLarge = errors.New("image exceeds size limit")
	// ErrUnsupported indicates content that is not a PNG, JPEG or WebP image.
	ErrUnsupported = errors.New("unsupported image type")
)

// Image is a validated upload ready to send to a provider.
type Image struct {
	Data []byte
	// MIME describes Data, which is PNG for WebP uploads.
	MIME string
	// SourceFormat is the detected format of the original upload.
	SourceFormat string
	Width        int
	Height       int
}

// Prepare validates data by content and converts WebP uploads to PNG.
// A maxBytes of zero disables the size limit.
func Prepare(data []byte, maxBytes int64) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Image{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(data), maxBytes)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	img := Image{Data: data, SourceFormat: format, Width: cfg.Width, Height: cfg.Height}
	switch format {
	case FormatPNG:
		img.MIME = "image/png"
	case FormatJPEG:
		img.MIME = "image/jpeg"
	case FormatWebP:
		converted, err := reencodePNG(data)
		if err != nil {
			return Image{}, err
		}
		img.Data = converted
		img.MIME = "image/png"
	default:
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupported, format)
	}
	return img, nil
}

func reencodePNG(data []byte) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, decoded); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Resize scales img to exactly width x height with Lanczos resampling and
// returns it PNG-encoded.
func Resize(img Image, width, height int) (Image, error) {
	if width <= 0 || height <= 0 {
		return Image{}, fmt.Errorf("resize: invalid size %dx%d", width, height)
	}
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return Image{}, fmt.Errorf("resize: decode image: %w", err)
	}
	resized := transform.Resize(decoded, width, height, transform.Lanczos)
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, resized); err != nil {
		return Image{}, fmt.Errorf("resize: encode png: %w", err)
	}
	return Image{
		Data:         buf.Bytes(),
		MIME:         "image/png",
		SourceFormat: img.SourceFormat,
		Width:        width,
		Height:       height,
	}, nil
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
