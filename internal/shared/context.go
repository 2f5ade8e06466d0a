package shared

import (
	"context"
	"strconv"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// UserIDFromContext returns the authenticated user ID or the empty string.
func UserIDFromContext(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.User()
	}
	return ""
}

// UserIDInt64FromContext returns the numeric user ID or zero. Sessions store
// IDs as strings.
func UserIDInt64FromContext(ctx context.Context) int64 {
	id, err := strconv.ParseInt(UserIDFromContext(ctx), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
