package claims

import (
	"context"
	"errors"
)

// ErrMissingSession is returned when a claim is attempted without an authenticated session.
var ErrMissingSession = errors.New("no authenticated session")

type userIDKey struct{}

// WithUserID returns a context carrying the session's user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the session user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}
