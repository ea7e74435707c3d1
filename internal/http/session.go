package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/target/content-portal/internal/authz"
)

// SessionCookieName is the browser session cookie.
const SessionCookieName = "session_id"

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Registry     *authz.Registry
	CookieDomain string
	// NewID defaults to uuid.NewString.
	NewID func() string
}

// SessionManager binds each browser to an in-process authz.Store via the session cookie.
type SessionManager struct {
	registry     *authz.Registry
	cookieDomain string
	newID        func() string
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	reg := opts.Registry
	if reg == nil {
		reg = authz.NewRegistry()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &SessionManager{registry: reg, cookieDomain: opts.CookieDomain, newID: newID}
}

// Registry exposes the underlying registry.
func (m *SessionManager) Registry() *authz.Registry { return m.registry }

// Middleware attaches a Session to every request, issuing a cookie when the
// browser has none or presents a malformed ID. Only Rotate registers a store, so
// an unknown ID gets a fresh logged-out store that is discarded with the request.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = m.newID()
			m.setCookie(w, r, id)
		}
		store, ok := m.registry.Lookup(id)
		if !ok {
			store = authz.NewStore()
		}
		sess := Session{ID: id, Store: store}
		next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sess)))
	})
}

// Rotate moves store under a fresh session ID, drops oldID and sets the new cookie.
// Called after a successful login so a pre-login ID never carries an authenticated state.
func (m *SessionManager) Rotate(w http.ResponseWriter, r *http.Request, oldID string, store *authz.Store) Session {
	id := m.newID()
	m.registry.Put(id, store)
	if oldID != "" && oldID != id {
		m.registry.Drop(oldID)
	}
	m.setCookie(w, r, id)
	return Session{ID: id, Store: store}
}

func (m *SessionManager) setCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		Domain:   m.cookieDomain,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie. It mirrors the attributes used when setting it.
func (m *SessionManager) ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cookieDomain,
		HttpOnly: true,
		Secure:   isSecure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
