// Package memory provides in-process adapters for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/ports"
)

var _ ports.Directory = (*Directory)(nil)

// Directory is an in-memory User Directory preserving insertion order.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]domainauth.Account
	order    []string
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{accounts: make(map[string]domainauth.Account)}
}

// Lookup returns a copy of the stored account.
func (d *Directory) Lookup(ctx context.Context, identity string) (domainauth.Account, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Account{}, fmt.Errorf("%w: %w", domainauth.ErrDirectoryUnavailable, err)
	}
	key := domainauth.NormalizeIdentity(identity)
	d.mu.RLock()
	defer d.mu.RUnlock()
	acc, ok := d.accounts[key]
	if !ok {
		return domainauth.Account{}, domainauth.ErrAccountNotFound
	}
	return domainauth.AccountFields{}.Apply(acc), nil
}

// Upsert creates or merges an account.
func (d *Directory) Upsert(
	ctx context.Context,
	identity string,
	fields domainauth.AccountFields,
) (domainauth.Account, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Account{}, fmt.Errorf("%w: %w", domainauth.ErrDirectoryUnavailable, err)
	}
	key := domainauth.NormalizeIdentity(identity)

	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.accounts[key]
	if ok {
		if fields.IsCreate() {
			return domainauth.Account{}, domainauth.ErrDuplicateIdentity
		}
		updated := fields.Apply(existing)
		updated.Identity = key
		d.accounts[key] = updated
		return domainauth.AccountFields{}.Apply(updated), nil
	}

	if !fields.IsComplete() {
		return domainauth.Account{}, domainauth.ErrIncompleteAccount
	}
	created := fields.Apply(domainauth.Account{Identity: key})
	d.accounts[key] = created
	d.order = append(d.order, key)
	return domainauth.AccountFields{}.Apply(created), nil
}

// ListByRole returns matching accounts in insertion order.
func (d *Directory) ListByRole(ctx context.Context, role domainauth.Role) ([]domainauth.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domainauth.ErrDirectoryUnavailable, err)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domainauth.Account, 0, len(d.order))
	for _, key := range d.order {
		acc := d.accounts[key]
		if acc.Role == role {
			out = append(out, domainauth.AccountFields{}.Apply(acc))
		}
	}
	return out, nil
}
