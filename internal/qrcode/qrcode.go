package qrcode

import (
	"errors"

	qr "github.com/skip2/go-qrcode"
)

// Size is the edge length of generated images in pixels.
const Size = 256

// Generate creates a QR code PNG image for a room join link.
func Generate(url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("empty url")
	}
	return qr.Encode(url, qr.Medium, Size)
}
