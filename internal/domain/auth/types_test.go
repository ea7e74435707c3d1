package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationState_ZeroValueIsLoggedOut(t *testing.T) {
	var s AuthorizationState
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsAdmin())
	assert.False(t, s.HasPageAccess(PageHome))
}

func TestAuthorizationState_AdminHasEveryPage(t *testing.T) {
	s := AuthorizationState{Role: RoleAdmin, AllowedPages: nil}
	for _, p := range append(Catalog(), PageID("not-a-page")) {
		assert.True(t, s.HasPageAccess(p), "page %s", p)
	}
}

func TestAuthorizationState_UserPagesExact(t *testing.T) {
	s := AuthorizationState{Role: RoleUser, Approved: true, AllowedPages: []PageID{PageVideos}}
	assert.True(t, s.HasPageAccess(PageVideos))
	assert.False(t, s.HasPageAccess(PagePortfolio))
	assert.False(t, s.HasPageAccess(PageAdmin))
}

func TestStateFromAccount_AdminAlwaysApproved(t *testing.T) {
	acc := Account{Identity: "root@example.com", Role: RoleAdmin, Approved: false}
	s := StateFromAccount(acc)
	assert.True(t, s.Approved)
	assert.Equal(t, []PageID{}, s.AllowedPages)
	assert.Equal(t, "root@example.com", s.Identity)
}

func TestStateFromAccount_CopiesPages(t *testing.T) {
	acc := Account{Role: RoleUser, Approved: true, AllowedPages: []PageID{PageHome}}
	s := StateFromAccount(acc)
	acc.AllowedPages[0] = PageAdmin
	assert.Equal(t, []PageID{PageHome}, s.AllowedPages)
}

func TestAccountFields_ApplyOnlyTouchesGivenFields(t *testing.T) {
	registered := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	acc := Account{
		Identity:     "alice@x.com",
		DisplayName:  "Alice",
		Role:         RoleUser,
		AllowedPages: []PageID{PageVideos},
		RegisteredAt: registered,
	}
	approved := true
	got := AccountFields{Approved: &approved}.Apply(acc)

	assert.True(t, got.Approved)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.Equal(t, []PageID{PageVideos}, got.AllowedPages)
	assert.Equal(t, registered, got.RegisteredAt)
	assert.True(t, got.HasPageAccess(PageVideos))
}

func TestAccountFields_IsComplete(t *testing.T) {
	secret, name, role := "hash", "Alice", RoleUser
	assert.False(t, AccountFields{}.IsComplete())
	assert.True(t, AccountFields{CredentialSecret: &secret, DisplayName: &name, Role: &role}.IsComplete())
}

func TestNormalizeIdentity(t *testing.T) {
	assert.Equal(t, "alice@x.com", NormalizeIdentity("  Alice@X.com "))
}

func TestCatalog_IsCopy(t *testing.T) {
	c := Catalog()
	require.NotEmpty(t, c)
	c[0] = "mutated"
	assert.Equal(t, PageHome, Catalog()[0])
	assert.True(t, InCatalog(PageMyFiles))
	assert.False(t, InCatalog("notes"))
}

func TestTrackedPages(t *testing.T) {
	assert.True(t, IsTracked(PageHome))
	assert.True(t, IsTracked(PageAdmin))
	assert.False(t, IsTracked(PageLive))
	assert.Len(t, TrackedPages(), 4)
}
