package ports

// Package ports defines interfaces (hexagonal ports) for directory, session, and analytics behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/content-portal/internal/domain/auth"
)

// Directory maps identities to account records.
// Every call may suspend on a remote backend; failures surface as domainauth.ErrDirectoryUnavailable.
type Directory interface {
	// Lookup returns the account for identity or domainauth.ErrAccountNotFound.
	Lookup(ctx context.Context, identity string) (domainauth.Account, error)

	// Upsert creates the account when absent (fields must be complete) or merges only the given fields.
	// Creating an identity that already exists fails with domainauth.ErrDuplicateIdentity.
	Upsert(ctx context.Context, identity string, fields domainauth.AccountFields) (domainauth.Account, error)

	// ListByRole returns accounts with the given role in insertion order.
	ListByRole(ctx context.Context, role domainauth.Role) ([]domainauth.Account, error)
}

// SecretHasher hashes and verifies credential secrets.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) bool
}
