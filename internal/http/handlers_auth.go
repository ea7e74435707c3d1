package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/target/content-portal/internal/authz"
	"github.com/target/content-portal/internal/http/validation"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/observability/metrics"
	"github.com/target/content-portal/internal/returnto"
	"github.com/target/content-portal/internal/service"
)

// AuthServiceInterface defines the auth operations the handlers need.
type AuthServiceInterface interface {
	Register(ctx context.Context, in service.RegisterInput) (domainauth.Account, error)
	Authenticate(ctx context.Context, store service.StateStore, identity, secret string) (domainauth.AuthorizationState, error)
	Logout(store service.StateStore)
}

// AuthHandlers provides HTTP handlers for login, registration and logout.
type AuthHandlers struct {
	Svc       AuthServiceInterface
	Preserver *returnto.Preserver
	Sessions  *SessionManager
	Observer  metrics.Observer
	Logger    *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) observeFailure(err error) {
	if h.Observer != nil {
		h.Observer.ObserveAuthFailure(err)
	}
}

// LoginPageView describes the public login page.
type LoginPageView struct {
	Page     string `json:"page"`
	Register bool   `json:"register"`
	ReturnTo string `json:"returnTo,omitempty"`
}

// LoginPage renders the login page view.
// GET /login?register=true&returnTo=<path>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := LoginPageView{Page: "login", Register: q.Get("register") == "true"}
	if rt := q.Get(returnto.ParamReturnTo); returnto.SafePath(rt) && !returnto.IsPublicAuthPath(rt) {
		view.ReturnTo = rt
	}
	WriteJSON(w, http.StatusOK, view)
}

// RegisterPage sends visitors to the login page with the registration form open.
// GET /register.
func (h *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	search := returnto.Query{}.Set("register", "true")
	if rt := r.URL.Query().Get(returnto.ParamReturnTo); rt != "" {
		search = search.Set(returnto.ParamReturnTo, rt)
	}
	nav := returnto.Navigation{Target: returnto.LoginPath, Search: search}
	http.Redirect(w, r, nav.URL(), http.StatusSeeOther)
}

type loginRequest struct {
	Identity string `json:"identity" validate:"required"`
	Secret   string `json:"secret"   validate:"required"`
	ReturnTo string `json:"returnTo"`
}

type loginResponse struct {
	Message    string                        `json:"message"`
	RedirectTo string                        `json:"redirectTo"`
	State      domainauth.AuthorizationState `json:"state"`
}

// Login authenticates the caller and answers with the post-login destination.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeNoSession(w)
		return
	}
	ctx := r.Context()

	pending := authz.NewStore()
	state, err := h.Svc.Authenticate(ctx, pending, req.Identity, req.Secret)
	if err != nil {
		h.observeFailure(err)
		WriteAppError(w, r, h.logger(), err)
		return
	}

	dest, found, err := h.Preserver.Consume(ctx, sess.ID, req.ReturnTo)
	if err != nil {
		h.logger().WarnContext(ctx, "return-to lookup failed", "error", err)
	}
	if !found {
		dest = "/"
	}
	if clearErr := h.Preserver.Clear(ctx, sess.ID); clearErr != nil {
		h.logger().WarnContext(ctx, "return-to clear failed", "error", clearErr)
	}
	h.Sessions.Rotate(w, r, sess.ID, pending)

	WriteJSON(w, http.StatusOK, loginResponse{
		Message:    domainauth.MsgLoginSuccess,
		RedirectTo: dest,
		State:      state,
	})
}

type registerRequest struct {
	DisplayName        string `json:"displayName"        validate:"required,max=120"`
	Identity           string `json:"identity"           validate:"required,email,max=254"`
	Secret             string `json:"secret"             validate:"required,max=72"`
	SecretConfirmation string `json:"secretConfirmation" validate:"required"`
}

// Register creates a pending account.
// POST /register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	// A mismatched confirmation is reported ahead of field rules.
	if req.Secret != req.SecretConfirmation {
		h.observeFailure(domainauth.ErrSecretMismatch)
		WriteAppError(w, r, h.logger(), domainauth.ErrSecretMismatch)
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeValidation(w, err)
		return
	}

	acc, err := h.Svc.Register(r.Context(), service.RegisterInput{
		DisplayName:        req.DisplayName,
		Identity:           req.Identity,
		Secret:             req.Secret,
		SecretConfirmation: req.SecretConfirmation,
	})
	if err != nil {
		h.observeFailure(err)
		WriteAppError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"message": domainauth.MsgRegisterSuccess,
		"account": acc,
	})
}

// Logout clears the session state and cookie.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := SessionFromContext(r.Context()); ok {
		h.Svc.Logout(sess.Store)
		h.Sessions.Registry().Drop(sess.ID)
	}
	h.Sessions.ClearCookie(w, r)
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "success",
		"redirect_to": returnto.LoginPath,
	})
}

// Status returns the current authorization state.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	var state domainauth.AuthorizationState
	if sess, ok := SessionFromContext(r.Context()); ok {
		state = sess.Store.Get()
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": state.IsAuthenticated(),
		"state":         state,
	})
}
