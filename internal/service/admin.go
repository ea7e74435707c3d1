package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/ports"
)

// AdminServiceOptions groups dependencies for AdminService.
type AdminServiceOptions struct {
	Directory ports.Directory
	Logger    *slog.Logger
}

// AdminService edits approval and page permissions of user accounts.
// Edits are written to the Directory only; live sessions see them after re-authenticating.
type AdminService struct {
	directory ports.Directory
	logger    *slog.Logger
}

// NewAdminService constructs a new AdminService.
func NewAdminService(opts AdminServiceOptions) *AdminService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{directory: opts.Directory, logger: logger.With("component", "admin_service")}
}

// EditResult reports what an edit did.
type EditResult struct {
	Account domainauth.Account
	// Skipped is true when the target is an admin and nothing was written.
	Skipped bool
}

// SetApproval overwrites the approval flag of a user account. Admin targets are left untouched.
func (s *AdminService) SetApproval(ctx context.Context, identity string, approved bool) (EditResult, error) {
	acc, err := s.target(ctx, identity)
	if err != nil {
		return EditResult{}, err
	}
	if acc.IsAdmin() {
		return EditResult{Account: acc, Skipped: true}, nil
	}
	updated, err := s.directory.Upsert(ctx, acc.Identity, domainauth.AccountFields{Approved: &approved})
	if err != nil {
		return EditResult{}, fmt.Errorf("set approval: %w", err)
	}
	s.logger.InfoContext(ctx, "approval updated", "identity", acc.Identity, "approved", approved)
	return EditResult{Account: updated}, nil
}

// SetAllowedPages overwrites the page set of a user account. Pages outside the catalog
// are rejected and duplicates are dropped keeping first occurrence. Admin targets are
// left untouched.
func (s *AdminService) SetAllowedPages(
	ctx context.Context,
	identity string,
	pages []domainauth.PageID,
) (EditResult, error) {
	clean, err := normalizePages(pages)
	if err != nil {
		return EditResult{}, err
	}
	acc, err := s.target(ctx, identity)
	if err != nil {
		return EditResult{}, err
	}
	if acc.IsAdmin() {
		return EditResult{Account: acc, Skipped: true}, nil
	}
	updated, err := s.directory.Upsert(ctx, acc.Identity, domainauth.AccountFields{AllowedPages: &clean})
	if err != nil {
		return EditResult{}, fmt.Errorf("set allowed pages: %w", err)
	}
	s.logger.InfoContext(ctx, "allowed pages updated", "identity", acc.Identity, "pages", clean)
	return EditResult{Account: updated}, nil
}

// ListManageableUsers returns user-role accounts in registration order. Admins are never listed.
func (s *AdminService) ListManageableUsers(ctx context.Context) ([]domainauth.Account, error) {
	users, err := s.directory.ListByRole(ctx, domainauth.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Catalog returns the grantable page identifiers.
func (s *AdminService) Catalog() []domainauth.PageID { return domainauth.Catalog() }

func (s *AdminService) target(ctx context.Context, identity string) (domainauth.Account, error) {
	acc, err := s.directory.Lookup(ctx, identity)
	if err != nil {
		return domainauth.Account{}, fmt.Errorf("lookup %q: %w", domainauth.NormalizeIdentity(identity), err)
	}
	return acc, nil
}

func normalizePages(pages []domainauth.PageID) ([]domainauth.PageID, error) {
	out := make([]domainauth.PageID, 0, len(pages))
	seen := make(map[domainauth.PageID]struct{}, len(pages))
	for _, p := range pages {
		if !domainauth.InCatalog(p) {
			return nil, fmt.Errorf("%w: %q", domainauth.ErrUnknownPage, p)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
