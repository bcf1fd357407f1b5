package api_context

import (
	"context"

	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

type ctxKey string

const (
	IDKey         ctxKey = "id"
	AuthUserIDKey ctxKey = "authUserID"
	AuthWalletKey ctxKey = "authWallet"
)

func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(IDKey).(uuid.UUID)
	return id, ok
}

// AuthUserIDFromContext returns the token subject set by the auth middleware.
func AuthUserIDFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(AuthUserIDKey).(string)
	return sub, ok && sub != ""
}

// AuthWalletFromContext returns the wallet address the token vouches for.
func AuthWalletFromContext(ctx context.Context) (string, bool) {
	w, ok := ctx.Value(AuthWalletKey).(string)
	return w, ok && w != ""
}

// WithSessionID returns a copy of ctx carrying a session id, for background work
// that should log like a request for that session.
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, IDKey, id)
}
