// Package qr reads work-order QR labels from photographed images.
package qr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"fieldbot/internal/flow"
)

// MediaFetcher resolves a transport photo reference to image bytes.
type MediaFetcher interface {
	Fetch(ctx context.Context, ref flow.PhotoRef) ([]byte, error)
}

// Decoder downloads a photo and extracts the work order encoded in its QR.
type Decoder struct {
	media MediaFetcher
}

// NewDecoder builds a decoder on top of the given media fetcher.
func NewDecoder(media MediaFetcher) *Decoder {
	return &Decoder{media: media}
}

// Decode implements the engine's work-order decoding contract.
func (d *Decoder) Decode(ctx context.Context, ref flow.PhotoRef) (flow.WorkOrder, error) {
	data, err := d.media.Fetch(ctx, ref)
	if err != nil {
		return flow.WorkOrder{}, fmt.Errorf("qr: fetch photo: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes extracts the work order from raw image bytes.
func DecodeBytes(data []byte) (flow.WorkOrder, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return flow.WorkOrder{}, fmt.Errorf("qr: decode image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return flow.WorkOrder{}, fmt.Errorf("qr: binarize image: %w", err)
	}
	// TryHarder widens the search; labels are often photographed at an angle.
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return flow.WorkOrder{}, fmt.Errorf("qr: no code found: %w", err)
	}
	return ParsePayload(result.GetText())
}

// ParsePayload splits a scanned payload into the work-order fields. The label
// carries four pipe-separated values: number, address, admin code and type.
func ParsePayload(payload string) (flow.WorkOrder, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return flow.WorkOrder{}, fmt.Errorf("qr: empty payload")
	}
	if !strings.Contains(payload, "|") {
		return flow.WorkOrder{}, fmt.Errorf("qr: payload %q is not a work-order label", truncate(payload, 50))
	}
	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return flow.WorkOrder{}, fmt.Errorf("qr: expected 4 fields separated by '|', got %d", len(parts))
	}
	wo := flow.WorkOrder{
		Number:  strings.TrimSpace(parts[0]),
		Address: strings.TrimSpace(parts[1]),
		Code:    strings.TrimSpace(parts[2]),
		Type:    strings.TrimSpace(parts[3]),
	}
	if wo.Number == "" || wo.Address == "" || wo.Code == "" || wo.Type == "" {
		return flow.WorkOrder{}, fmt.Errorf("qr: payload has empty fields")
	}
	return wo, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
