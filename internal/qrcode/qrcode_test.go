package qrcode

import (
	"bytes"
	"image/png"
	"testing"
)

func TestGenerate(t *testing.T) {
	data, err := Generate("http://localhost:8080/join?room=ABCDEF")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Size || b.Dy() != Size {
		t.Errorf("expected %dx%d, got %dx%d", Size, Size, b.Dx(), b.Dy())
	}
}

func TestGenerateEmpty(t *testing.T) {
	if _, err := Generate(""); err == nil {
		t.Error("expected error for empty url")
	}
}
