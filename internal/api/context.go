package api

import (
	"context"

	"github.com/terra-clan/interview-console/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "web_session"

// SessionFromContext extracts the browser session from context
func SessionFromContext(ctx context.Context) *models.WebSession {
	sess, ok := ctx.Value(sessionContextKey).(*models.WebSession)
	if !ok {
		return nil
	}
	return sess
}

// ContextWithSession adds the browser session to context
func ContextWithSession(ctx context.Context, sess *models.WebSession) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
