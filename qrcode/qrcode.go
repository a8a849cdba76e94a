package qrcode

import (
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

// StopPNG renders a QR code that points riders at the live map for one stop,
// for printing on the physical stop sign.
func StopPNG(baseURL, stopID string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	url := fmt.Sprintf("%s/rider?stop=%s", baseURL, stopID)
	return qr.Encode(url, qr.Medium, size)
}
