package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/content-portal/internal/adapters/memory"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/domain/model"
	mocksauth "github.com/target/content-portal/internal/mocks/auth"
	"github.com/target/content-portal/internal/returnto"
	"github.com/target/content-portal/internal/service"
)

const (
	adminIdentity = "admin@example.com"
	adminSecret   = "admin123"
)

type portal struct {
	handler   http.Handler
	auth      *service.AuthService
	admin     *service.AdminService
	analytics *service.AnalyticsService
	content   *service.ContentService
	sessions  *SessionManager
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	dir := memory.NewDirectory()
	analytics := service.NewAnalyticsService(service.AnalyticsServiceOptions{Store: memory.NewAnalytics()})
	auth := service.NewAuthService(service.AuthServiceOptions{
		Directory: dir,
		Hasher:    mocksauth.PlainHasher{},
		Analytics: analytics,
	})
	_, _, err := auth.SeedAdmin(context.Background(), service.SeedInput{Identity: adminIdentity, Secret: adminSecret})
	require.NoError(t, err)

	p := &portal{
		auth:      auth,
		admin:     service.NewAdminService(service.AdminServiceOptions{Directory: dir}),
		analytics: analytics,
		content:   service.NewContentService(service.ContentServiceOptions{Repo: memory.NewContentRepo()}),
		sessions:  NewSessionManager(SessionManagerOptions{}),
	}
	p.handler = NewRouter(RouterServices{
		Auth:        p.auth,
		Admin:       p.admin,
		Analytics:   p.analytics,
		Content:     p.content,
		Preserver:   returnto.NewPreserver(returnto.PreserverOptions{Slot: memory.NewReturnToSlot()}),
		Sessions:    p.sessions,
		Visits:      p.analytics,
		Revalidator: p.auth,
	})
	return p
}

// browser keeps the session cookie between requests the way a real client would.
type browser struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (p *portal) browser(t *testing.T) *browser {
	return &browser{t: t, h: p.handler}
}

func (b *browser) do(method, target string, body any) *httptest.ResponseRecorder {
	b.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(b.t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if b.cookie != nil {
		r.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.h.ServeHTTP(w, r)
	for _, c := range w.Result().Cookies() {
		if c.Name != SessionCookieName {
			continue
		}
		if c.MaxAge < 0 {
			b.cookie = nil
		} else {
			b.cookie = c
		}
	}
	return w
}

func (b *browser) login(identity, secret, returnTo string) *httptest.ResponseRecorder {
	b.t.Helper()
	body := map[string]string{"identity": identity, "secret": secret}
	if returnTo != "" {
		body["returnTo"] = returnTo
	}
	return b.do(http.MethodPost, "/login", body)
}

func (b *browser) register(identity, secret string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.do(http.MethodPost, "/register", map[string]string{
		"displayName":        "Alice",
		"identity":           identity,
		"secret":             secret,
		"secretConfirmation": secret,
	})
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_ApprovalScenario(t *testing.T) {
	p := newPortal(t)
	alice := p.browser(t)

	w := alice.register("alice@x.com", "pw1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), domainauth.MsgRegisterSuccess)

	w = alice.login("alice@x.com", "pw1", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, domainauth.MsgPendingApproval, decode[map[string]string](t, w)["message"])

	admin := p.browser(t)
	require.Equal(t, http.StatusOK, admin.login(adminIdentity, adminSecret, "").Code)
	w = admin.do(http.MethodPut, "/api/admin/users/alice@x.com/approval", map[string]bool{"approved": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = alice.login("alice@x.com", "pw1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[loginResponse](t, w)
	assert.Equal(t, domainauth.MsgLoginSuccess, resp.Message)
	assert.Equal(t, "/", resp.RedirectTo)
	assert.Empty(t, resp.State.AllowedPages)
	assert.True(t, resp.State.Approved)
}

func TestRouter_PermissionEditsApplyOnReauthentication(t *testing.T) {
	p := newPortal(t)
	ctx := context.Background()
	p.registerApproved(t, "alice@x.com", "pw1")

	alice := p.browser(t)
	require.Equal(t, http.StatusOK, alice.login("alice@x.com", "pw1", "").Code)

	_, err := p.admin.SetAllowedPages(ctx, "alice@x.com", []domainauth.PageID{domainauth.PageVideos})
	require.NoError(t, err)

	w := alice.do(http.MethodGet, "/videos", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/", loc.Path)
	assert.Equal(t, "true", loc.Query().Get("accessDenied"))
	assert.Equal(t, domainauth.MsgAccessDenied, loc.Query().Get("reason"))

	require.Equal(t, http.StatusOK, alice.login("alice@x.com", "pw1", "").Code)
	w = alice.do(http.MethodGet, "/videos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[PageView](t, w)
	assert.Equal(t, domainauth.PageVideos, view.Page)
	assert.True(t, view.State.HasPageAccess(domainauth.PageVideos))
}

func TestRouter_HomeWithoutAccessIsTerminal(t *testing.T) {
	p := newPortal(t)
	p.registerApproved(t, "alice@x.com", "pw1")

	alice := p.browser(t)
	require.Equal(t, http.StatusOK, alice.login("alice@x.com", "pw1", "").Code)

	target := "/videos"
	hops := 0
	var w *httptest.ResponseRecorder
	for {
		w = alice.do(http.MethodGet, target, nil)
		if w.Code != http.StatusSeeOther {
			break
		}
		hops++
		require.Less(t, hops, 3, "redirect chain did not settle at %s", target)
		target = w.Header().Get("Location")
	}
	assert.Equal(t, 1, hops)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	view := decode[PageView](t, w)
	assert.Equal(t, domainauth.PageHome, view.Page)
	assert.True(t, view.AccessDenied)
	assert.Equal(t, domainauth.MsgAccessDenied, view.Reason)
	assert.Empty(t, view.Content)

	w = alice.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Location"))

	snap, err := p.analytics.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.PageVisits[domainauth.PageHome])
}

func TestRouter_ReturnToRoundTrip(t *testing.T) {
	p := newPortal(t)
	p.registerApproved(t, "alice@x.com", "pw1")
	_, err := p.admin.SetAllowedPages(context.Background(), "alice@x.com", []domainauth.PageID{domainauth.PagePortfolio})
	require.NoError(t, err)

	alice := p.browser(t)
	w := alice.do(http.MethodGet, "/portfolio?x=1", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?returnTo=%2Fportfolio%3Fx%3D1", w.Header().Get("Location"))

	// The login body omits returnTo so the stored slot is used.
	w = alice.login("alice@x.com", "pw1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/portfolio?x=1", decode[loginResponse](t, w).RedirectTo)

	w = alice.do(http.MethodGet, "/portfolio?x=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/logout", nil).Code)
	w = alice.login("alice@x.com", "pw1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", decode[loginResponse](t, w).RedirectTo)
}

func TestRouter_LoginExplicitReturnToWins(t *testing.T) {
	p := newPortal(t)
	admin := p.browser(t)
	admin.do(http.MethodGet, "/videos", nil)

	w := admin.login(adminIdentity, adminSecret, "/admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/admin", decode[loginResponse](t, w).RedirectTo)
}

func TestRouter_LoginRotatesSession(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)
	b.do(http.MethodGet, "/login", nil)
	require.NotNil(t, b.cookie)
	before := b.cookie.Value

	require.Equal(t, http.StatusOK, b.login(adminIdentity, adminSecret, "").Code)
	require.NotNil(t, b.cookie)
	assert.NotEqual(t, before, b.cookie.Value)
	_, stillThere := p.sessions.Registry().Lookup(before)
	assert.False(t, stillThere)
	assert.True(t, b.cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, b.cookie.SameSite)
}

func TestRouter_InvalidCredentials(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)

	w := b.login("nobody@x.com", "pw", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, domainauth.MsgInvalidCredentials, decode[map[string]string](t, w)["message"])

	w = b.login(adminIdentity, "wrong", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = b.do(http.MethodPost, "/login", map[string]string{"identity": adminIdentity})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RegisterErrors(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)

	w := b.do(http.MethodPost, "/register", map[string]string{
		"displayName":        "Alice",
		"identity":           "alice@x.com",
		"secret":             "pw1",
		"secretConfirmation": "pw2",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domainauth.MsgSecretMismatch, decode[map[string]string](t, w)["message"])

	require.Equal(t, http.StatusCreated, b.register("alice@x.com", "pw1").Code)
	w = b.register("Alice@X.com", "pw1")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domainauth.MsgDuplicateIdentity, decode[map[string]string](t, w)["message"])

	w = b.register("not-an-email", "pw1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_PublicAuthPages(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)

	w := b.do(http.MethodGet, "/login?register=true&returnTo=%2Fvideos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[LoginPageView](t, w)
	assert.True(t, view.Register)
	assert.Equal(t, "/videos", view.ReturnTo)

	w = b.do(http.MethodGet, "/login?returnTo=%2F%2Fevil.example.com", nil)
	assert.Empty(t, decode[LoginPageView](t, w).ReturnTo)

	w = b.do(http.MethodGet, "/register?returnTo=%2Flive", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?register=true&returnTo=%2Flive", w.Header().Get("Location"))
}

func TestRouter_AdminGuard(t *testing.T) {
	p := newPortal(t)
	p.registerApproved(t, "alice@x.com", "pw1")
	_, err := p.admin.SetAllowedPages(context.Background(), "alice@x.com", domainauth.Catalog())
	require.NoError(t, err)

	anon := p.browser(t)
	w := anon.do(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?returnTo=%2Fadmin", w.Header().Get("Location"))
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/admin/users", nil).Code)

	alice := p.browser(t)
	require.Equal(t, http.StatusOK, alice.login("alice@x.com", "pw1", "").Code)
	w = alice.do(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, http.StatusForbidden, alice.do(http.MethodGet, "/api/admin/users", nil).Code)

	admin := p.browser(t)
	require.Equal(t, http.StatusOK, admin.login(adminIdentity, adminSecret, "").Code)
	assert.Equal(t, http.StatusOK, admin.do(http.MethodGet, "/admin", nil).Code)
}

func TestRouter_AdminEditorSkipsAdmins(t *testing.T) {
	p := newPortal(t)
	admin := p.browser(t)
	require.Equal(t, http.StatusOK, admin.login(adminIdentity, adminSecret, "").Code)

	w := admin.do(http.MethodPut, "/api/admin/users/"+adminIdentity+"/pages", map[string]any{"pages": []string{"home"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[editResponse](t, w).Skipped)

	w = admin.do(http.MethodPut, "/api/admin/users/ghost@x.com/approval", map[string]bool{"approved": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	p.registerApproved(t, "alice@x.com", "pw1")
	w = admin.do(http.MethodPut, "/api/admin/users/alice@x.com/pages", map[string]any{"pages": []string{"notes"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = admin.do(http.MethodGet, "/api/admin/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[map[string][]domainauth.Account](t, w)["users"]
	require.Len(t, users, 1)
	assert.Equal(t, "alice@x.com", users[0].Identity)
	assert.NotContains(t, w.Body.String(), "plain:")

	w = admin.do(http.MethodGet, "/api/admin/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domainauth.Catalog(), decode[map[string][]domainauth.PageID](t, w)["pages"])
}

func TestRouter_AnalyticsTracksRenderedPages(t *testing.T) {
	p := newPortal(t)
	admin := p.browser(t)
	require.Equal(t, http.StatusOK, admin.login(adminIdentity, adminSecret, "").Code)

	admin.do(http.MethodGet, "/", nil)
	admin.do(http.MethodGet, "/videos", nil)
	admin.do(http.MethodGet, "/live", nil)

	anon := p.browser(t)
	anon.do(http.MethodGet, "/videos", nil)

	w := admin.do(http.MethodGet, "/api/admin/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[struct {
		SuccessfulLogins int64                       `json:"successful_logins"`
		PageVisits       map[domainauth.PageID]int64 `json:"page_visits"`
	}](t, w)
	assert.Equal(t, int64(1), snap.SuccessfulLogins)
	assert.Equal(t, int64(1), snap.PageVisits[domainauth.PageHome])
	assert.Equal(t, int64(1), snap.PageVisits[domainauth.PageVideos])
	assert.Zero(t, snap.PageVisits[domainauth.PageLive])

	require.Equal(t, http.StatusNoContent, admin.do(http.MethodDelete, "/api/admin/analytics", nil).Code)
	w = admin.do(http.MethodGet, "/api/admin/analytics", nil)
	assert.Contains(t, w.Body.String(), `"successful_logins":0`)
}

func TestRouter_ContentLifecycle(t *testing.T) {
	p := newPortal(t)
	admin := p.browser(t)
	require.Equal(t, http.StatusOK, admin.login(adminIdentity, adminSecret, "").Code)

	w := admin.do(http.MethodPost, "/api/admin/content", map[string]any{
		"title":        "Quarterly update",
		"content_type": "videoLink",
		"url":          "https://videos.example.com/q1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[model.ContentItem](t, w)
	assert.Equal(t, adminIdentity, item.CreatedBy)

	w = admin.do(http.MethodPost, "/api/admin/content", map[string]any{
		"title":        "Handbook",
		"content_type": "document",
		"url":          "https://files.example.com/handbook.pdf",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = admin.do(http.MethodGet, "/my-videos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[PageView](t, w)
	require.Len(t, view.Content, 1)
	assert.Equal(t, item.ID, view.Content[0].ID)

	w = admin.do(http.MethodPut, "/api/admin/content/"+item.ID+"/status", map[string]bool{"enabled": false})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = admin.do(http.MethodGet, "/api/content", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), item.ID)

	require.Equal(t, http.StatusNoContent, admin.do(http.MethodDelete, "/api/admin/content/"+item.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, admin.do(http.MethodDelete, "/api/admin/content/"+item.ID, nil).Code)

	w = admin.do(http.MethodPost, "/api/admin/content", map[string]any{"title": "", "content_type": "document"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	anon := p.browser(t)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/content", nil).Code)
}

func TestRouter_RevokedApprovalEndsSession(t *testing.T) {
	p := newPortal(t)
	p.registerApproved(t, "alice@x.com", "pw1")
	alice := p.browser(t)
	require.Equal(t, http.StatusOK, alice.login("alice@x.com", "pw1", "").Code)

	_, err := p.admin.SetApproval(context.Background(), "alice@x.com", false)
	require.NoError(t, err)

	w := alice.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?returnTo=%2F", w.Header().Get("Location"))
}

func TestRouter_StatusAndLogout(t *testing.T) {
	p := newPortal(t)
	b := p.browser(t)

	w := b.do(http.MethodGet, "/auth/status", nil)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	require.Equal(t, http.StatusOK, b.login(adminIdentity, adminSecret, "").Code)
	w = b.do(http.MethodGet, "/auth/status", nil)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	w = b.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, b.cookie)

	w = b.do(http.MethodGet, "/auth/status", nil)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestRouter_Healthz(t *testing.T) {
	p := newPortal(t)
	w := p.browser(t).do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, healthResponse, w.Body.String())
}

func (p *portal) registerApproved(t *testing.T, identity, secret string) {
	t.Helper()
	ctx := context.Background()
	_, err := p.auth.Register(ctx, service.RegisterInput{
		DisplayName:        "Alice",
		Identity:           identity,
		Secret:             secret,
		SecretConfirmation: secret,
	})
	require.NoError(t, err)
	_, err = p.admin.SetApproval(ctx, identity, true)
	require.NoError(t, err)
}
