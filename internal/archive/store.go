// Package archive persists dispatched report records in Postgres so failed
// deliveries can be found and re-sent by an operator.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"fieldbot/core/logger"
	"fieldbot/internal/report"
)

// Row is one archived dispatch attempt.
type Row struct {
	ID         int64     `db:"id"`
	ChatID     int64     `db:"chat_id"`
	Branch     string    `db:"branch"`
	Subject    string    `db:"subject"`
	Body       string    `db:"body"`
	PhotoCount int       `db:"photo_count"`
	Status     string    `db:"status"`
	Error      string    `db:"error"`
	CreatedAt  time.Time `db:"created_at"`
}

// Store is the Postgres-backed report archive.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps the shared database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save inserts one dispatch record.
func (s *Store) Save(ctx context.Context, rec *report.Record) error {
	const q = `
		INSERT INTO reports (chat_id, branch, subject, body, photo_count, status, error)
		VALUES (:chat_id, :branch, :subject, :body, :photo_count, :status, :error)`
	row := Row{
		ChatID:     rec.ChatID,
		Branch:     rec.Branch,
		Subject:    rec.Subject,
		Body:       rec.Body,
		PhotoCount: rec.PhotoCount,
		Status:     rec.Status,
		Error:      rec.Error,
	}
	start := time.Now()
	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		logger.DB.Error("report insert failed",
			slog.String("event", "archive.save"),
			slog.Int64("chat_id", rec.ChatID),
			slog.String("status", rec.Status),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("archive save: %w", err)
	}
	logger.DB.Debug("report archived",
		slog.String("event", "archive.save"),
		slog.Int64("chat_id", rec.ChatID),
		slog.String("status", rec.Status),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// ListFailed returns the most recent failed dispatches, newest first.
func (s *Store) ListFailed(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
		SELECT id, chat_id, branch, subject, body, photo_count, status, error, created_at
		FROM reports
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`
	var rows []Row
	if err := s.db.SelectContext(ctx, &rows, q, report.StatusFailed, limit); err != nil {
		return nil, fmt.Errorf("archive list failed: %w", err)
	}
	return rows, nil
}

// MarkSent flips a failed record to sent after a manual re-delivery.
func (s *Store) MarkSent(ctx context.Context, id int64) error {
	const q = `UPDATE reports SET status = $1, error = '' WHERE id = $2`
	res, err := s.db.ExecContext(ctx, q, report.StatusSent, id)
	if err != nil {
		return fmt.Errorf("archive mark sent: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("archive mark sent: report %d not found", id)
	}
	return nil
}
