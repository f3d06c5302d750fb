package middleware

import "context"

type contextKey struct{ name string }

var (
	accountIDKey = contextKey{"account_id"}
	sessionIDKey = contextKey{"session_id"}
	roleKey      = contextKey{"role"}
)

// WithIdentity returns a context carrying the authenticated caller's account
// id, session id, and role. Handlers read these via the Get helpers.
func WithIdentity(ctx context.Context, accountID, sessionID, role string) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	ctx = context.WithValue(ctx, roleKey, role)
	return ctx
}

// GetAccountID returns the account id from ctx and true if set.
func GetAccountID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accountIDKey).(string)
	return v, ok
}

// GetSessionID returns the session id from ctx and true if set.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}

// GetRole returns the caller's role from ctx and true if set.
func GetRole(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(roleKey).(string)
	return v, ok
}
