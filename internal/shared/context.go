package shared

import "context"

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

// ActorFromContext returns the acting profile, or nil when unauthenticated.
func ActorFromContext(ctx context.Context) *Profile {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return nil
	}
	return sess.Profile()
}

// TokenFromContext returns the backend bearer token for the session.
func TokenFromContext(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return ""
	}
	return sess.Token()
}
