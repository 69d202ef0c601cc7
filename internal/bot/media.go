package bot

import (
	"context"
	"fmt"
	"io"

	tele "gopkg.in/telebot.v4"

	"fieldbot/internal/flow"
)

// Fetcher downloads photo content from the Telegram file API. It serves both
// QR decoding and report attachment resolution.
type Fetcher struct{}

// NewFetcher returns a transport-backed media fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch resolves a photo reference to its bytes using the bot instance of the
// update currently being handled.
func (f *Fetcher) Fetch(ctx context.Context, ref flow.PhotoRef) ([]byte, error) {
	c, ok := teleContextFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("bot: no telegram context to fetch file %s", ref.FileID)
	}
	rc, err := c.Bot().File(&tele.File{FileID: ref.FileID})
	if err != nil {
		return nil, fmt.Errorf("bot: download file %s: %w", ref.FileID, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("bot: read file %s: %w", ref.FileID, err)
	}
	return data, nil
}
