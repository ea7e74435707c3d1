package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/content-portal/internal/adapters/memory"
	"github.com/target/content-portal/internal/authz"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/guard"
	mocksauth "github.com/target/content-portal/internal/mocks/auth"
	"github.com/target/content-portal/internal/returnto"
	"github.com/target/content-portal/internal/service"
)

type recordingObserver struct {
	mu        sync.Mutex
	decisions []string
	failures  []error
}

func (o *recordingObserver) ObserveAuthFailure(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

func (o *recordingObserver) ObserveGuardDecision(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, outcome)
}

type failingRevalidator struct{ calls int }

func (f *failingRevalidator) Revalidate(context.Context, service.StateStore) (bool, error) {
	f.calls++
	return false, domainauth.ErrDirectoryUnavailable
}

func serveWithState(h http.Handler, state domainauth.AuthorizationState, target string) *httptest.ResponseRecorder {
	store := authz.NewStore()
	store.Set(state)
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r = r.WithContext(SetSessionInContext(r.Context(), Session{ID: sessionA, Store: store}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestGuards_PageObservesAndTracks(t *testing.T) {
	obs := &recordingObserver{}
	visits := &mocksauth.RecordingAnalytics{}
	g := NewGuards(GuardsOptions{
		Preserver: returnto.NewPreserver(returnto.PreserverOptions{Slot: memory.NewReturnToSlot()}),
		Visits:    visits,
		Observer:  obs,
		Logger:    discardLogger(),
	})
	h := g.Page(guard.Route{Kind: guard.KindSection, Page: domainauth.PageVideos})(okHandler())

	user := domainauth.AuthorizationState{Role: domainauth.RoleUser, Approved: true, Identity: "alice@x.com"}
	w := serveWithState(h, user, "/videos")
	assert.Equal(t, http.StatusSeeOther, w.Code)

	user.AllowedPages = []domainauth.PageID{domainauth.PageVideos}
	w = serveWithState(h, user, "/videos")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serveWithState(h, domainauth.AuthorizationState{}, "/videos?a=1&b=2")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?returnTo=%2Fvideos%3Fa%3D1%26b%3D2", w.Header().Get("Location"))

	assert.Equal(t, []string{"redirect_denied", "render", "redirect_login"}, obs.decisions)
	assert.Equal(t, 1, visits.VisitCount(domainauth.PageVideos))
}

func TestGuards_MalformedQueryKeepsValidPairs(t *testing.T) {
	var logs bytes.Buffer
	g := NewGuards(GuardsOptions{
		Preserver: returnto.NewPreserver(returnto.PreserverOptions{Slot: memory.NewReturnToSlot()}),
		Logger:    slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	h := g.Page(guard.Route{Kind: guard.KindSection, Page: domainauth.PageVideos})(okHandler())

	w := serveWithState(h, domainauth.AuthorizationState{}, "/videos?a=1&b=%zz&c=3")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?returnTo=%2Fvideos%3Fa%3D1%26c%3D3", w.Header().Get("Location"))
	assert.Contains(t, logs.String(), "dropped malformed query parameters")
	assert.Contains(t, logs.String(), "kept=2")
}

func TestGuards_DeniedHomeServesRefusal(t *testing.T) {
	obs := &recordingObserver{}
	visits := &mocksauth.RecordingAnalytics{}
	g := NewGuards(GuardsOptions{Visits: visits, Observer: obs, Logger: discardLogger()})

	var reason string
	var denied bool
	h := g.Page(guard.Route{Kind: guard.KindSection, Page: domainauth.PageHome})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason, denied = denialFromContext(r.Context())
			w.WriteHeader(http.StatusForbidden)
		}))

	user := domainauth.AuthorizationState{Role: domainauth.RoleUser, Approved: true, Identity: "alice@x.com"}
	w := serveWithState(h, user, "/?accessDenied=true")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.True(t, denied)
	assert.Equal(t, domainauth.MsgAccessDenied, reason)
	assert.Equal(t, []string{"denied"}, obs.decisions)
	assert.Zero(t, visits.VisitCount(domainauth.PageHome))
}

func TestGuards_VisitFailureStillRenders(t *testing.T) {
	g := NewGuards(GuardsOptions{
		Visits: &mocksauth.RecordingAnalytics{Err: errors.New("redis down")},
		Logger: discardLogger(),
	})
	h := g.Page(guard.Route{Kind: guard.KindAuthenticated, Page: domainauth.PageHome})(okHandler())
	w := serveWithState(h, domainauth.AuthorizationState{Role: domainauth.RoleAdmin, Approved: true}, "/")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuards_RevalidationFailureKeepsState(t *testing.T) {
	rv := &failingRevalidator{}
	g := NewGuards(GuardsOptions{Revalidator: rv, Logger: discardLogger()})
	h := g.RequireAuth(okHandler())

	w := serveWithState(h, domainauth.AuthorizationState{Role: domainauth.RoleUser, Approved: true}, "/api/content")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, rv.calls)
}

func TestGuards_APIGuards(t *testing.T) {
	g := NewGuards(GuardsOptions{Logger: discardLogger()})
	admin := g.RequireAdmin(okHandler())

	assert.Equal(t, http.StatusUnauthorized, serveWithState(admin, domainauth.AuthorizationState{}, "/api/admin/users").Code)
	user := domainauth.AuthorizationState{Role: domainauth.RoleUser, Approved: true}
	assert.Equal(t, http.StatusForbidden, serveWithState(admin, user, "/api/admin/users").Code)
	adm := domainauth.AuthorizationState{Role: domainauth.RoleAdmin, Approved: true}
	assert.Equal(t, http.StatusOK, serveWithState(admin, adm, "/api/admin/users").Code)
}

func TestGuards_NoSessionMiddleware(t *testing.T) {
	g := NewGuards(GuardsOptions{})
	w := httptest.NewRecorder()
	g.RequireAuth(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/content", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "session_required")
}
