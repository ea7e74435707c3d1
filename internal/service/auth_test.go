package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/content-portal/internal/adapters/memory"
	"github.com/target/content-portal/internal/authz"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/mocks"
	mocksauth "github.com/target/content-portal/internal/mocks/auth"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type authFixture struct {
	dir       *memory.Directory
	analytics *mocksauth.RecordingAnalytics
	auth      *AuthService
	admin     *AdminService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	dir := memory.NewDirectory()
	analytics := &mocksauth.RecordingAnalytics{}
	return authFixture{
		dir:       dir,
		analytics: analytics,
		auth: NewAuthService(AuthServiceOptions{
			Directory: dir,
			Hasher:    mocksauth.PlainHasher{},
			Analytics: analytics,
			Now:       func() time.Time { return fixedNow },
		}),
		admin: NewAdminService(AdminServiceOptions{Directory: dir}),
	}
}

func (f authFixture) register(t *testing.T, identity, secret string) domainauth.Account {
	t.Helper()
	acc, err := f.auth.Register(context.Background(), RegisterInput{
		DisplayName:        "Alice",
		Identity:           identity,
		Secret:             secret,
		SecretConfirmation: secret,
	})
	require.NoError(t, err)
	return acc
}

func TestAuthService_RegisterCreatesPendingUser(t *testing.T) {
	f := newAuthFixture(t)
	acc := f.register(t, " Alice@X.com", "pw1")

	assert.Equal(t, "alice@x.com", acc.Identity)
	assert.Equal(t, domainauth.RoleUser, acc.Role)
	assert.False(t, acc.Approved)
	assert.Equal(t, []domainauth.PageID{}, acc.AllowedPages)
	assert.Equal(t, fixedNow, acc.RegisteredAt)
	assert.Equal(t, "plain:pw1", acc.CredentialSecret)
}

func TestAuthService_RegisterSecretMismatchSkipsDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	svc := NewAuthService(AuthServiceOptions{Directory: dir, Hasher: mocksauth.PlainHasher{}})

	_, err := svc.Register(context.Background(), RegisterInput{
		DisplayName:        "Alice",
		Identity:           "alice@x.com",
		Secret:             "pw1",
		SecretConfirmation: "pw2",
	})
	require.ErrorIs(t, err, domainauth.ErrSecretMismatch)
}

func TestAuthService_RegisterRequiresFields(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.Register(context.Background(), RegisterInput{Identity: "a@x.com", Secret: "x", SecretConfirmation: "x"})
	require.ErrorIs(t, err, domainauth.ErrInvalidRegistration)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@x.com", "pw1")
	_, err := f.auth.Register(context.Background(), RegisterInput{
		DisplayName:        "Other",
		Identity:           "ALICE@x.com",
		Secret:             "pw2",
		SecretConfirmation: "pw2",
	})
	require.ErrorIs(t, err, domainauth.ErrDuplicateIdentity)
}

func TestAuthService_RegisterDirectoryUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	dir.EXPECT().Lookup(gomock.Any(), "alice@x.com").Return(domainauth.Account{}, domainauth.ErrDirectoryUnavailable)
	svc := NewAuthService(AuthServiceOptions{Directory: dir, Hasher: mocksauth.PlainHasher{}})

	_, err := svc.Register(context.Background(), RegisterInput{
		DisplayName:        "Alice",
		Identity:           "alice@x.com",
		Secret:             "pw1",
		SecretConfirmation: "pw1",
	})
	require.ErrorIs(t, err, domainauth.ErrDirectoryUnavailable)
}

func TestAuthService_RegisterHashFailure(t *testing.T) {
	boom := errors.New("boom")
	svc := NewAuthService(AuthServiceOptions{Directory: memory.NewDirectory(), Hasher: mocksauth.PlainHasher{HashErr: boom}})
	_, err := svc.Register(context.Background(), RegisterInput{
		DisplayName:        "Alice",
		Identity:           "alice@x.com",
		Secret:             "pw1",
		SecretConfirmation: "pw1",
	})
	require.ErrorIs(t, err, boom)
}

func TestAuthService_AuthenticateFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@x.com", "pw1")
	ctx := context.Background()
	store := authz.NewStore()

	_, err := f.auth.Authenticate(ctx, store, "nobody@x.com", "pw1")
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)

	_, err = f.auth.Authenticate(ctx, store, "alice@x.com", "wrong")
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)

	_, err = f.auth.Authenticate(ctx, store, "alice@x.com", "pw1")
	require.ErrorIs(t, err, domainauth.ErrPendingApproval)

	assert.False(t, store.Get().IsAuthenticated())
	assert.Zero(t, f.analytics.LoginCount())
}

func TestAuthService_AuthenticateDirectoryUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	dir.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(domainauth.Account{}, domainauth.ErrDirectoryUnavailable)
	svc := NewAuthService(AuthServiceOptions{Directory: dir, Hasher: mocksauth.PlainHasher{}})

	_, err := svc.Authenticate(context.Background(), authz.NewStore(), "alice@x.com", "pw1")
	require.ErrorIs(t, err, domainauth.ErrDirectoryUnavailable)
	assert.NotErrorIs(t, err, domainauth.ErrInvalidCredentials)
}

// Register, fail pending, approve, then log in with no pages granted.
func TestAuthService_ApprovalScenario(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	store := authz.NewStore()
	f.register(t, "alice@x.com", "pw1")

	_, err := f.auth.Authenticate(ctx, store, "alice@x.com", "pw1")
	require.ErrorIs(t, err, domainauth.ErrPendingApproval)

	_, err = f.admin.SetApproval(ctx, "alice@x.com", true)
	require.NoError(t, err)

	state, err := f.auth.Authenticate(ctx, store, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, []domainauth.PageID{}, state.AllowedPages)
	assert.True(t, state.Approved)
	assert.Equal(t, "Alice", state.DisplayName)
	assert.Equal(t, state, store.Get())
	assert.Equal(t, 1, f.analytics.LoginCount())
}

// Page grants made during a live session only show after re-authentication.
func TestAuthService_GrantPropagatesOnReauthentication(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	store := authz.NewStore()
	f.register(t, "alice@x.com", "pw1")
	_, err := f.admin.SetApproval(ctx, "alice@x.com", true)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, store, "alice@x.com", "pw1")
	require.NoError(t, err)

	_, err = f.admin.SetAllowedPages(ctx, "alice@x.com", []domainauth.PageID{domainauth.PageVideos})
	require.NoError(t, err)
	assert.False(t, store.HasPageAccess(domainauth.PageVideos))

	_, err = f.auth.Authenticate(ctx, store, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.True(t, store.HasPageAccess(domainauth.PageVideos))
}

func TestAuthService_AdminBypassesApproval(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, created, err := f.auth.SeedAdmin(ctx, SeedInput{Identity: "admin@example.com", Secret: "admin123"})
	require.NoError(t, err)
	require.True(t, created)

	// Stored approval is irrelevant for admins.
	approved := false
	_, err = f.dir.Upsert(ctx, "admin@example.com", domainauth.AccountFields{Approved: &approved})
	require.NoError(t, err)

	store := authz.NewStore()
	state, err := f.auth.Authenticate(ctx, store, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.True(t, state.Approved)
	assert.True(t, store.HasPageAccess(domainauth.PageID("anything")))
}

func TestAuthService_AnalyticsFailureDoesNotFailLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.analytics.Err = errors.New("statsd down")
	ctx := context.Background()
	_, _, err := f.auth.SeedAdmin(ctx, SeedInput{Identity: "admin@example.com", Secret: "admin123"})
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, authz.NewStore(), "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, 1, f.analytics.LoginCount())
}

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	store := authz.NewStore()
	store.Set(domainauth.AuthorizationState{Role: domainauth.RoleUser, Identity: "alice@x.com"})
	f.auth.Logout(store)
	f.auth.Logout(store)
	assert.False(t, store.Get().IsAuthenticated())
}

func TestAuthService_Revalidate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "alice@x.com", "pw1")
	_, err := f.admin.SetApproval(ctx, "alice@x.com", true)
	require.NoError(t, err)

	store := authz.NewStore()
	_, err = f.auth.Authenticate(ctx, store, "alice@x.com", "pw1")
	require.NoError(t, err)

	cleared, err := f.auth.Revalidate(ctx, store)
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.True(t, store.Get().IsAuthenticated())

	_, err = f.admin.SetApproval(ctx, "alice@x.com", false)
	require.NoError(t, err)
	cleared, err = f.auth.Revalidate(ctx, store)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, store.Get().IsAuthenticated())

	cleared, err = f.auth.Revalidate(ctx, store)
	require.NoError(t, err)
	assert.False(t, cleared, "logged-out stores are left alone")
}

func TestAuthService_RevalidateMissingAccountAndOutage(t *testing.T) {
	dir := &mocksauth.FuncDirectory{}
	svc := NewAuthService(AuthServiceOptions{Directory: dir, Hasher: mocksauth.PlainHasher{}})
	ctx := context.Background()
	store := authz.NewStore()
	state := domainauth.AuthorizationState{Role: domainauth.RoleUser, Approved: true, Identity: "alice@x.com"}

	store.Set(state)
	dir.LookupFunc = func(context.Context, string) (domainauth.Account, error) {
		return domainauth.Account{}, domainauth.ErrDirectoryUnavailable
	}
	cleared, err := svc.Revalidate(ctx, store)
	require.ErrorIs(t, err, domainauth.ErrDirectoryUnavailable)
	assert.False(t, cleared)
	assert.True(t, store.Get().IsAuthenticated())

	dir.LookupFunc = nil
	cleared, err = svc.Revalidate(ctx, store)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, store.Get().IsAuthenticated())
}

func TestAuthService_SeedAdminIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	acc, created, err := f.auth.SeedAdmin(ctx, SeedInput{Identity: "Admin@Example.com", Secret: "admin123"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin@example.com", acc.Identity)
	assert.Equal(t, "Admin", acc.DisplayName)
	assert.Equal(t, domainauth.RoleAdmin, acc.Role)
	assert.Equal(t, domainauth.Catalog(), acc.AllowedPages)

	again, created, err := f.auth.SeedAdmin(ctx, SeedInput{Identity: "admin@example.com", Secret: "other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, acc.CredentialSecret, again.CredentialSecret)

	_, _, err = f.auth.SeedAdmin(ctx, SeedInput{})
	require.Error(t, err)
}
