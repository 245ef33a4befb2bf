package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if format != "png" {
		t.Errorf("expected png output, got %s", format)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestNormalize_KeepsSmallFrames(t *testing.T) {
	data := encodePNG(t, 100, 80)

	out, err := Normalize(data, 640)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, h := decodeSize(t, out)
	if w != 100 || h != 80 {
		t.Errorf("expected 100x80, got %dx%d", w, h)
	}
}

func TestNormalize_DownscalesLargeFrames(t *testing.T) {
	data := encodePNG(t, 1600, 800)

	out, err := Normalize(data, 640)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, h := decodeSize(t, out)
	if w != 640 {
		t.Errorf("expected width 640, got %d", w)
	}
	if h != 320 {
		t.Errorf("expected height 320, got %d", h)
	}
}

func TestNormalize_AcceptsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := Normalize(buf.Bytes(), 640)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, h := decodeSize(t, out)
	if w != 50 || h != 50 {
		t.Errorf("expected 50x50, got %dx%d", w, h)
	}
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	if _, err := Normalize([]byte("not an image"), 640); err == nil {
		t.Error("expected error for undecodable data")
	}
}
