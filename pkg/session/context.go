package session

import (
	"context"
	"log/slog"
)

type (
	identityContextKey struct{}
	sessionContextKey  struct{}
	agentContextKey    struct{}
)

// WithIdentity adds the authenticated identity to the context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext retrieves the authenticated identity from the context
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// WithSession adds the matched session row to the context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext retrieves the matched session row from the context
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}

// WithAgent stores the client user-agent for the lifetime of one request.
func WithAgent(ctx context.Context, agent string) context.Context {
	return context.WithValue(ctx, agentContextKey{}, agent)
}

// AgentFromContext returns the client user-agent, or an empty string.
func AgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	agent, _ := ctx.Value(agentContextKey{}).(string)
	return agent
}

// LoggerExtractor returns a ContextExtractor for the logger
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IdentityFromContext(ctx); ok {
			return slog.String("user_id", id.ID.String()), true
		}
		return slog.Attr{}, false
	}
}
