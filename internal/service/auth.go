package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/ports"
)

// StateStore is the per-session holder the Authenticator writes into.
// authz.Store satisfies it.
type StateStore interface {
	Get() domainauth.AuthorizationState
	Set(state domainauth.AuthorizationState)
	Clear()
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Directory ports.Directory
	Hasher    ports.SecretHasher
	// Analytics is optional; failures are logged and never fail a login.
	Analytics ports.AnalyticsRecorder
	Logger    *slog.Logger
	Now       func() time.Time
}

// AuthService validates credentials against the User Directory and issues authorization state.
type AuthService struct {
	directory ports.Directory
	hasher    ports.SecretHasher
	analytics ports.AnalyticsRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		directory: opts.Directory,
		hasher:    opts.Hasher,
		analytics: opts.Analytics,
		logger:    logger.With("component", "auth_service"),
		now:       now,
	}
}

// RegisterInput groups the fields of the registration form.
type RegisterInput struct {
	DisplayName        string
	Identity           string
	Secret             string
	SecretConfirmation string
}

// Register creates a pending user account. Mismatched secrets are rejected before
// the Directory is contacted; an existing identity is rejected after a Lookup.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domainauth.Account, error) {
	if in.Secret != in.SecretConfirmation {
		return domainauth.Account{}, domainauth.ErrSecretMismatch
	}
	identity := domainauth.NormalizeIdentity(in.Identity)
	name := strings.TrimSpace(in.DisplayName)
	if identity == "" || name == "" || in.Secret == "" {
		return domainauth.Account{}, domainauth.ErrInvalidRegistration
	}

	_, err := s.directory.Lookup(ctx, identity)
	switch {
	case err == nil:
		return domainauth.Account{}, domainauth.ErrDuplicateIdentity
	case !errors.Is(err, domainauth.ErrAccountNotFound):
		return domainauth.Account{}, fmt.Errorf("lookup identity: %w", err)
	}

	hash, err := s.hasher.Hash(in.Secret)
	if err != nil {
		return domainauth.Account{}, fmt.Errorf("hash secret: %w", err)
	}
	role := domainauth.RoleUser
	approved := false
	pages := []domainauth.PageID{}
	registeredAt := s.now().UTC()

	acc, err := s.directory.Upsert(ctx, identity, domainauth.AccountFields{
		CredentialSecret: &hash,
		DisplayName:      &name,
		Role:             &role,
		Approved:         &approved,
		AllowedPages:     &pages,
		RegisteredAt:     &registeredAt,
	})
	if err != nil {
		return domainauth.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.logger.InfoContext(ctx, "account registered", "identity", identity)
	return acc, nil
}

// Authenticate checks identity and secret, enforces the approval gate, and installs
// the resulting state into store before returning it.
func (s *AuthService) Authenticate(
	ctx context.Context,
	store StateStore,
	identity, secret string,
) (domainauth.AuthorizationState, error) {
	acc, err := s.directory.Lookup(ctx, identity)
	if err != nil {
		if errors.Is(err, domainauth.ErrAccountNotFound) {
			return domainauth.AuthorizationState{}, domainauth.ErrInvalidCredentials
		}
		return domainauth.AuthorizationState{}, fmt.Errorf("lookup identity: %w", err)
	}
	if !s.hasher.Compare(acc.CredentialSecret, secret) {
		return domainauth.AuthorizationState{}, domainauth.ErrInvalidCredentials
	}
	if !acc.EffectiveApproved() {
		return domainauth.AuthorizationState{}, domainauth.ErrPendingApproval
	}

	state := domainauth.StateFromAccount(acc)
	store.Set(state)

	if s.analytics != nil {
		if err := s.analytics.RecordLogin(ctx); err != nil {
			s.logger.WarnContext(ctx, "record login failed", "error", err)
		}
	}
	s.logger.InfoContext(ctx, "login succeeded", "identity", acc.Identity, "role", acc.Role)
	return state, nil
}

// Logout clears store. It is safe to call repeatedly.
func (s *AuthService) Logout(store StateStore) {
	store.Clear()
}

// Revalidate re-reads the account behind an authenticated store and clears the store
// when the account is gone or a non-admin is no longer approved. Allowed pages are not
// refreshed; permission edits take effect on the next Authenticate. A Directory failure
// leaves the state untouched and is returned.
func (s *AuthService) Revalidate(ctx context.Context, store StateStore) (bool, error) {
	state := store.Get()
	if !state.IsAuthenticated() {
		return false, nil
	}
	acc, err := s.directory.Lookup(ctx, state.Identity)
	if err != nil {
		if errors.Is(err, domainauth.ErrAccountNotFound) {
			store.Clear()
			s.logger.InfoContext(ctx, "session cleared, account removed", "identity", state.Identity)
			return true, nil
		}
		return false, fmt.Errorf("revalidate session: %w", err)
	}
	if !acc.EffectiveApproved() {
		store.Clear()
		s.logger.InfoContext(ctx, "session cleared, approval revoked", "identity", state.Identity)
		return true, nil
	}
	return false, nil
}

// SeedInput describes the bootstrap admin account.
type SeedInput struct {
	Identity    string
	Secret      string
	DisplayName string
}

// SeedAdmin creates the bootstrap admin with every catalog page granted. It reports
// false without changes when the identity already exists.
func (s *AuthService) SeedAdmin(ctx context.Context, in SeedInput) (domainauth.Account, bool, error) {
	identity := domainauth.NormalizeIdentity(in.Identity)
	if identity == "" || in.Secret == "" {
		return domainauth.Account{}, false, errors.New("seed admin identity and secret are required")
	}
	existing, err := s.directory.Lookup(ctx, identity)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domainauth.ErrAccountNotFound) {
		return domainauth.Account{}, false, fmt.Errorf("lookup seed admin: %w", err)
	}

	hash, err := s.hasher.Hash(in.Secret)
	if err != nil {
		return domainauth.Account{}, false, fmt.Errorf("hash secret: %w", err)
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = "Admin"
	}
	role := domainauth.RoleAdmin
	approved := true
	pages := domainauth.Catalog()
	registeredAt := s.now().UTC()

	acc, err := s.directory.Upsert(ctx, identity, domainauth.AccountFields{
		CredentialSecret: &hash,
		DisplayName:      &name,
		Role:             &role,
		Approved:         &approved,
		AllowedPages:     &pages,
		RegisteredAt:     &registeredAt,
	})
	if err != nil {
		return domainauth.Account{}, false, fmt.Errorf("create seed admin: %w", err)
	}
	s.logger.InfoContext(ctx, "seeded admin account", "identity", identity)
	return acc, true, nil
}
