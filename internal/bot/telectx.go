package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

type teleCtxKey struct{}

// withTeleContext stores the live update context so transport-facing pieces
// (outbox, media fetcher) can reach the bot API from a context.Context.
func withTeleContext(ctx context.Context, c tele.Context) context.Context {
	return context.WithValue(ctx, teleCtxKey{}, c)
}

func teleContextFrom(ctx context.Context) (tele.Context, bool) {
	c, ok := ctx.Value(teleCtxKey{}).(tele.Context)
	return c, ok
}
