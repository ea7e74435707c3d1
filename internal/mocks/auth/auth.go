package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"strings"
	"sync"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SecretHasher      = PlainHasher{}
	_ ports.AnalyticsRecorder = (*RecordingAnalytics)(nil)
	_ ports.Directory         = (*FuncDirectory)(nil)
)

const plainPrefix = "plain:"

// PlainHasher is a reversible hasher so tests can assert on stored secrets without bcrypt cost.
type PlainHasher struct {
	// HashErr, when set, is returned by Hash.
	HashErr error
}

func (h PlainHasher) Hash(secret string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return plainPrefix + secret, nil
}

func (PlainHasher) Compare(hash, secret string) bool {
	return strings.HasPrefix(hash, plainPrefix) && strings.TrimPrefix(hash, plainPrefix) == secret
}

// RecordingAnalytics records analytics events for assertions. Err is returned from every call.
type RecordingAnalytics struct {
	mu     sync.Mutex
	Logins int
	Visits []domainauth.PageID
	Err    error
}

func (r *RecordingAnalytics) RecordLogin(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Logins++
	return r.Err
}

func (r *RecordingAnalytics) RecordPageVisit(_ context.Context, page domainauth.PageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Visits = append(r.Visits, page)
	return r.Err
}

// LoginCount returns the number of recorded logins.
func (r *RecordingAnalytics) LoginCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Logins
}

// VisitCount returns how many visits were recorded for page.
func (r *RecordingAnalytics) VisitCount(page domainauth.PageID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.Visits {
		if p == page {
			n++
		}
	}
	return n
}

// FuncDirectory delegates to an inner Directory unless a func field overrides the call.
// It lets tests inject failures into an otherwise working directory.
type FuncDirectory struct {
	Inner          ports.Directory
	LookupFunc     func(ctx context.Context, identity string) (domainauth.Account, error)
	UpsertFunc     func(ctx context.Context, identity string, fields domainauth.AccountFields) (domainauth.Account, error)
	ListByRoleFunc func(ctx context.Context, role domainauth.Role) ([]domainauth.Account, error)
}

func (d *FuncDirectory) Lookup(ctx context.Context, identity string) (domainauth.Account, error) {
	if d.LookupFunc != nil {
		return d.LookupFunc(ctx, identity)
	}
	if d.Inner == nil {
		return domainauth.Account{}, domainauth.ErrAccountNotFound
	}
	return d.Inner.Lookup(ctx, identity)
}

func (d *FuncDirectory) Upsert(
	ctx context.Context,
	identity string,
	fields domainauth.AccountFields,
) (domainauth.Account, error) {
	if d.UpsertFunc != nil {
		return d.UpsertFunc(ctx, identity, fields)
	}
	if d.Inner == nil {
		return domainauth.Account{}, domainauth.ErrDirectoryUnavailable
	}
	return d.Inner.Upsert(ctx, identity, fields)
}

func (d *FuncDirectory) ListByRole(ctx context.Context, role domainauth.Role) ([]domainauth.Account, error) {
	if d.ListByRoleFunc != nil {
		return d.ListByRoleFunc(ctx, role)
	}
	if d.Inner == nil {
		return nil, nil
	}
	return d.Inner.ListByRole(ctx, role)
}
