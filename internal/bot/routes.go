package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"fieldbot/core/telegram/callbacks"
	tghelpers "fieldbot/core/telegram/helpers"
	"fieldbot/internal/flow"
)

// updateContext builds the logging context for an update and attaches the
// live telebot context for the outbox and media fetcher.
func updateContext(c tele.Context) context.Context {
	return withTeleContext(tghelpers.BuildContext(c), c)
}

// handleStart restarts the interview from scratch.
func (a *App) handleStart(c tele.Context) error {
	return a.engine.Start(updateContext(c), c.Chat().ID)
}

// handleUpdate normalizes a message update into an engine event. Photo
// messages become photo events; everything else is treated as text.
func (a *App) handleUpdate(c tele.Context) error {
	ev := flow.Event{SessionID: c.Chat().ID, Kind: flow.EventText, Text: c.Text()}
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		ev.Kind = flow.EventPhoto
		ev.Photo = flow.PhotoRef{FileID: msg.Photo.FileID}
	}
	return a.engine.Handle(updateContext(c), ev)
}

// handleCallback turns an inline button press into a button event.
func (a *App) handleCallback(c tele.Context) error {
	ev := flow.Event{
		SessionID: c.Chat().ID,
		Kind:      flow.EventButton,
		Text:      callbacks.CallbackPayload(c),
	}
	return a.engine.Handle(updateContext(c), ev)
}

// handlePending lists failed report deliveries for the admin.
func (a *App) handlePending(c tele.Context) error {
	ctx := updateContext(c)
	rows, err := a.archive.ListFailed(ctx, 10)
	if err != nil {
		return tghelpers.SendText(c, "No se pudieron consultar los reportes pendientes.")
	}
	if len(rows) == 0 {
		return tghelpers.SendText(c, "No hay reportes pendientes de envío.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Reportes con envío fallido (%d):\n", len(rows))
	for _, r := range rows {
		fmt.Fprintf(&b, "#%d %s chat %d — %s (%s)\n",
			r.ID, r.CreatedAt.Format("02/01 15:04"), r.ChatID, r.Subject, r.Error)
	}
	return tghelpers.SendText(c, b.String())
}

// handleMarkSent closes a failed report after the operator re-sent it by hand.
func (a *App) handleMarkSent(c tele.Context) error {
	arg := ""
	if msg := c.Message(); msg != nil {
		arg = strings.TrimSpace(msg.Payload)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return tghelpers.SendText(c, "Uso: /enviado <id del reporte>")
	}
	if err := a.archive.MarkSent(updateContext(c), id); err != nil {
		return tghelpers.SendText(c, fmt.Sprintf("No se pudo marcar el reporte %d como enviado.", id))
	}
	return tghelpers.SendText(c, fmt.Sprintf("Reporte %d marcado como enviado.", id))
}
