package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"fieldbot/core/logger"
	"fieldbot/core/telegram/format"
	"fieldbot/core/telegram/keyboard"
	"fieldbot/core/telegram/sender"
	"fieldbot/internal/flow"
)

// flowCallbackKey is the registry key all interview menu buttons carry; the
// button's own value travels in the callback payload.
const flowCallbackKey = "flow"

// Outbox renders engine output through the Telegram transport. Sends go
// through the async dispatcher; a saturated queue falls back to a direct
// synchronous send so the technician never loses a prompt.
type Outbox struct {
	disp *sender.Dispatcher
}

// NewOutbox builds the outbox on top of the shared dispatcher.
func NewOutbox(disp *sender.Dispatcher) *Outbox {
	return &Outbox{disp: disp}
}

// SendText delivers plain prompt text. Tank category names are bolded; the
// rest of the text is sent as-is in HTML mode.
func (o *Outbox) SendText(ctx context.Context, id int64, text string) error {
	c, ok := teleContextFrom(ctx)
	if !ok {
		return fmt.Errorf("bot: no telegram context for chat %d", id)
	}
	html := format.BoldKeywords(text)
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	return o.send(ctx, "send.text", func() error {
		return c.Send(html, opts)
	})
}

// SendMenu delivers a question with its inline keyboard.
func (o *Outbox) SendMenu(ctx context.Context, id int64, p flow.Prompt) error {
	c, ok := teleContextFrom(ctx)
	if !ok {
		return fmt.Errorf("bot: no telegram context for chat %d", id)
	}
	rows := make([][]keyboard.InlineBtn, 0, len(p.Buttons))
	for _, row := range p.Buttons {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btns = append(btns, keyboard.InlineBtn{Text: b.Label, Unique: flowCallbackKey, Data: b.Data})
		}
		rows = append(rows, btns)
	}
	markup := keyboard.InlineButtonsRows(rows...)
	html := format.BoldKeywords(p.Text)
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup}
	return o.send(ctx, "send.menu", func() error {
		return c.Send(html, opts)
	})
}

func (o *Outbox) send(ctx context.Context, action string, run func() error) error {
	if o.disp == nil {
		return run()
	}
	if err := o.disp.Enqueue(ctx, action, "sendMessage", run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}
