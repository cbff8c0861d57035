package service

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// TrackerQRGenerator encodes the public customer-tracking URL of an
// order as a PNG.
type TrackerQRGenerator struct {
	BaseURL string
}

func (g TrackerQRGenerator) Generate(orderID string) ([]byte, error) {
	qrData := fmt.Sprintf("%s/track.html?order_id=%s", g.BaseURL, orderID)
	return qrcode.Encode(qrData, qrcode.Medium, 256)
}

var _ QRGenerator = TrackerQRGenerator{}
