package attendance

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// qrSize is the PNG edge length in pixels.
const qrSize = 256

// RenderQR encodes a check-in token as a PNG QR code for the host to show.
func RenderQR(token string) ([]byte, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}
