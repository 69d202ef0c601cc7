package qr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldbot/internal/flow"
)

func encodeQR(t *testing.T, payload string) []byte {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	require.NoError(t, err)

	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestDecodeBytesRoundTrip(t *testing.T) {
	data := encodeQR(t, "0012345|Av. Siempre Viva 742|777|Mensual")
	wo, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, flow.WorkOrder{
		Number:  "0012345",
		Address: "Av. Siempre Viva 742",
		Code:    "777",
		Type:    "Mensual",
	}, wo)
}

func TestDecodeBytesRejectsNonImage(t *testing.T) {
	_, err := DecodeBytes([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestParsePayload(t *testing.T) {
	wo, err := ParsePayload(" 0012345 | Av. Siempre Viva 742 | 777 | Mensual ")
	require.NoError(t, err)
	assert.Equal(t, "0012345", wo.Number)
	assert.Equal(t, "Mensual", wo.Type)
}

func TestParsePayloadRejectsBadShapes(t *testing.T) {
	cases := []string{
		"",
		"https://example.com/qr",
		"1234567",
		"a|b|c",
		"a|b|c|d|e",
		"a||c|d",
	}
	for _, in := range cases {
		_, err := ParsePayload(in)
		assert.Error(t, err, "payload %q", in)
	}
}

type stubMedia struct {
	data []byte
	err  error
}

func (s stubMedia) Fetch(context.Context, flow.PhotoRef) ([]byte, error) {
	return s.data, s.err
}

func TestDecoderFetchFailure(t *testing.T) {
	d := NewDecoder(stubMedia{err: errors.New("file expired")})
	_, err := d.Decode(context.Background(), flow.PhotoRef{FileID: "x"})
	assert.ErrorContains(t, err, "fetch photo")
}

func TestDecoderEndToEnd(t *testing.T) {
	d := NewDecoder(stubMedia{data: encodeQR(t, "1|Calle 2|3|Trimestral")})
	wo, err := d.Decode(context.Background(), flow.PhotoRef{FileID: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Trimestral", wo.Type)
}
