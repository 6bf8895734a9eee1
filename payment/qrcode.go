package payment

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRCodePNG renders a payment URI as a scannable PNG. Presentation only; the
// URI string itself is the canonical artifact.
func QRCodePNG(uri string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(uri, qrcode.Medium, size)
}
