package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// 1x1 lossless WebP.
const tinyWebP = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func encodedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPrepareDetectsByContent(t *testing.T) {
	data := encodedPNG(t, 20, 10)
	img, err := Prepare(data, 0)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if img.MIME != "image/png" || img.SourceFormat != FormatPNG || img.Width != 20 || img.Height != 10 {
		t.Fatalf("unexpected image %+v", img)
	}

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, image.NewGray(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	img, err = Prepare(jpg.Bytes(), 0)
	if err != nil {
		t.Fatalf("Prepare jpeg returned error: %v", err)
	}
	if img.MIME != "image/jpeg" {
		t.Fatalf("unexpected mime %q", img.MIME)
	}
}

func TestPrepareConvertsWebP(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(tinyWebP)
	if err != nil {
		t.Fatal(err)
	}
	img, err := Prepare(data, 0)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if img.SourceFormat != FormatWebP || img.MIME != "image/png" {
		t.Fatalf("unexpected image %+v", img)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(img.Data)); err != nil || format != FormatPNG {
		t.Fatalf("expected png payload, got %q (%v)", format, err)
	}
}

func TestPrepareRejects(t *testing.T) {
	if _, err := Prepare(nil, 0); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := Prepare([]byte("GIF89a not really"), 0); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := Prepare(encodedPNG(t, 8, 8), 10); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestResize(t *testing.T) {
	img, err := Prepare(encodedPNG(t, 64, 32), 0)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	resized, err := Resize(img, 16, 16)
	if err != nil {
		t.Fatalf("Resize returned error: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(resized.Data))
	if err != nil {
		t.Fatalf("decode resized: %v", err)
	}
	if format != FormatPNG || cfg.Width != 16 || cfg.Height != 16 {
		t.Fatalf("unexpected resized image %s %dx%d", format, cfg.Width, cfg.Height)
	}
	if _, err := Resize(img, 0, 10); err == nil {
		t.Fatal("expected invalid size to fail")
	}
}

func TestDigestStable(t *testing.T) {
	if Digest([]byte("a")) != Digest([]byte("a")) || Digest([]byte("a")) == Digest([]byte("b")) {
		t.Fatal("unexpected digest behaviour")
	}
	if len(Digest(nil)) != 64 {
		t.Fatal("expected hex sha256")
	}
}
