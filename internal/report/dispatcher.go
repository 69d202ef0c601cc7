package report

import (
	"context"
	"fmt"
	"log/slog"

	"fieldbot/core/logger"
	"fieldbot/internal/flow"
)

// Attachment is a downloaded interview photo ready for delivery.
type Attachment struct {
	Filename string
	Data     []byte
}

// MediaFetcher resolves a transport photo reference to its bytes.
type MediaFetcher interface {
	Fetch(ctx context.Context, ref flow.PhotoRef) ([]byte, error)
}

// Sender delivers a compiled report with its attachments.
type Sender interface {
	Send(ctx context.Context, rep *Report, attachments []Attachment) error
}

// Archive persists a delivery record for every dispatched report.
type Archive interface {
	Save(ctx context.Context, rec *Record) error
}

// Record is the archived trace of one dispatch attempt.
type Record struct {
	ChatID     int64
	Branch     string
	Subject    string
	Body       string
	PhotoCount int
	Status     string
	Error      string
}

// Delivery statuses stored in the archive.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Dispatcher compiles finished sessions and pushes the result through mail
// delivery and the archive. It satisfies the engine's dispatch contract.
type Dispatcher struct {
	media   MediaFetcher
	mail    Sender
	archive Archive
}

// NewDispatcher wires the delivery pipeline. The archive may be nil when
// persistence is disabled; delivery then runs fire-and-forget.
func NewDispatcher(media MediaFetcher, mail Sender, archive Archive) *Dispatcher {
	return &Dispatcher{media: media, mail: mail, archive: archive}
}

// Dispatch implements the engine hand-off: compile, resolve photos, send,
// archive. A photo that cannot be downloaded is skipped, not fatal; the
// report still leaves with whatever attachments resolved.
func (d *Dispatcher) Dispatch(ctx context.Context, s *flow.Session) error {
	rep := Compile(s)

	attachments := make([]Attachment, 0, len(rep.Photos))
	for i, ref := range rep.Photos {
		data, err := d.media.Fetch(ctx, ref)
		if err != nil {
			logger.Warn(ctx, "report", "photo_fetch_failed",
				slog.Int64("chat_id", s.ID),
				slog.String("file_id", ref.FileID),
				slog.String("error", err.Error()))
			continue
		}
		attachments = append(attachments, Attachment{Filename: AttachmentName(i), Data: data})
	}

	sendErr := d.mail.Send(ctx, rep, attachments)

	rec := &Record{
		ChatID:     s.ID,
		Branch:     string(s.Branch),
		Subject:    rep.Subject,
		Body:       rep.Body,
		PhotoCount: len(attachments),
		Status:     StatusSent,
	}
	if sendErr != nil {
		rec.Status = StatusFailed
		rec.Error = sendErr.Error()
	}
	if d.archive != nil {
		if err := d.archive.Save(ctx, rec); err != nil {
			logger.Error(ctx, "report", "archive_failed",
				slog.Int64("chat_id", s.ID), slog.String("error", err.Error()))
			if sendErr == nil {
				// Delivery succeeded; an archive miss is not surfaced to the
				// technician.
				return nil
			}
		}
	}
	if sendErr != nil {
		return fmt.Errorf("report: dispatch chat %d: %w", s.ID, sendErr)
	}
	return nil
}
