// Package mail delivers compiled service reports over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"fieldbot/core/logger"
	"fieldbot/internal/report"
)

// Config holds SMTP delivery settings.
type Config struct {
	Host     string `yaml:"host" envconfig:"SMTP_HOST"`
	Port     int    `yaml:"port" envconfig:"SMTP_PORT" default:"587"`
	Username string `yaml:"username" envconfig:"SMTP_USERNAME"`
	Password string `yaml:"password" envconfig:"SMTP_PASSWORD"`
	From     string `yaml:"from" envconfig:"SMTP_FROM"`
	To       string `yaml:"to" envconfig:"SMTP_TO"`
}

// Normalize fills derivable defaults.
func (c *Config) Normalize() {
	if c.Port == 0 {
		c.Port = 587
	}
	if c.From == "" {
		c.From = c.Username
	}
	if c.To == "" {
		c.To = c.From
	}
}

// Sender sends reports through a single SMTP account. STARTTLS is required;
// plain connections are refused by the client.
type Sender struct {
	client *gomail.Client
	from   string
	to     string
}

// NewSender builds the SMTP client from config.
func NewSender(cfg Config) (*Sender, error) {
	cfg.Normalize()
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: smtp host is required")
	}
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("mail: build client: %w", err)
	}
	return &Sender{client: client, from: cfg.From, to: cfg.To}, nil
}

// Send delivers one report with its photo attachments.
func (s *Sender) Send(ctx context.Context, rep *report.Report, attachments []report.Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("mail: from %q: %w", s.from, err)
	}
	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("mail: to %q: %w", s.to, err)
	}
	msg.Subject(rep.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, rep.Body)

	for _, att := range attachments {
		if err := msg.AttachReader(att.Filename, bytes.NewReader(att.Data)); err != nil {
			return fmt.Errorf("mail: attach %s: %w", att.Filename, err)
		}
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	logger.Info(ctx, "mail", "report_sent",
		slog.String("subject", rep.Subject),
		slog.Int("attachments", len(attachments)))
	return nil
}
