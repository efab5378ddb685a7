package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context. The session middleware
// attaches it on every request; the guard chain reads identity from it.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session, or nil when the request never
// passed the session middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
