// Package auth resolves the acting user of a request.
package auth

import "context"

type contextKey string

const userKey contextKey = "user_id"

// WithUser returns a context carrying an authenticated user id.
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserFromContext returns the authenticated user id. ok is false when the
// request is anonymous.
func UserFromContext(ctx context.Context) (userID int64, ok bool) {
	userID, ok = ctx.Value(userKey).(int64)
	if !ok || userID <= 0 {
		return 0, false
	}

	return userID, true
}

// IsUserLoggedIn reports whether the context carries an authenticated user.
func IsUserLoggedIn(ctx context.Context) bool {
	_, ok := UserFromContext(ctx)

	return ok
}
