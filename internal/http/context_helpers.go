package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/target/content-portal/internal/authz"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// Session is the browser session bound to a request: its cookie ID, which also
// scopes the return-to slot, and its authorization state.
type Session struct {
	ID    string
	Store *authz.Store
}

// SetSessionInContext returns a child context that carries session.
func SetSessionInContext(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the request's session and whether one was attached.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.Store == nil {
		return Session{}, false
	}
	return s, true
}

type denialKey struct{}

// withDenial marks the request as refused by a guard that renders instead of redirecting.
func withDenial(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, denialKey{}, reason)
}

// denialFromContext returns the refusal reason set by withDenial.
func denialFromContext(ctx context.Context) (string, bool) {
	reason, ok := ctx.Value(denialKey{}).(string)
	return reason, ok
}

var errNoSession = errors.New("session middleware not installed")

func writeNoSession(w http.ResponseWriter) {
	WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "session_required", Err: errNoSession})
}
