package returnto

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/target/content-portal/internal/ports"
)

const (
	// LoginPath is where unauthenticated visitors are sent.
	LoginPath = "/login"
	// RegisterPath is the public registration route.
	RegisterPath = "/register"
	// ParamReturnTo carries the preserved destination on the login URL.
	ParamReturnTo = "returnTo"
	// DefaultTTL bounds how long a saved destination survives the login round trip.
	DefaultTTL = 10 * time.Minute
)

// BuildReturnTo serializes path and query into a re-parseable destination.
func BuildReturnTo(path string, q Query) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// IsPublicAuthPath reports whether dest points at /login or /register, ignoring any query.
func IsPublicAuthPath(dest string) bool {
	p, _, _ := strings.Cut(dest, "?")
	p = strings.TrimSuffix(p, "/")
	return p == LoginPath || p == RegisterPath
}

// SafePath reports whether dest is a same-origin relative path starting with "/".
func SafePath(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, `/\`) {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return false
	}
	return true
}

// Navigation is a redirect target plus the search parameters to attach.
type Navigation struct {
	Target string
	Search Query
}

// URL renders the navigation as a relative URL.
func (n Navigation) URL() string {
	return BuildReturnTo(n.Target, n.Search)
}

// PreserverOptions groups dependencies for Preserver.
type PreserverOptions struct {
	Slot   ports.ReturnToSlot
	TTL    time.Duration
	Logger *slog.Logger
}

// Preserver saves and restores the single pending destination for a session scope.
type Preserver struct {
	slot   ports.ReturnToSlot
	ttl    time.Duration
	logger *slog.Logger
}

// NewPreserver constructs a Preserver. A non-positive TTL uses DefaultTTL.
func NewPreserver(opts PreserverOptions) *Preserver {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Preserver{slot: opts.Slot, ttl: ttl, logger: logger.With("component", "returnto")}
}

// Save stores destination for scope. Public auth routes and unsafe paths are ignored.
func (p *Preserver) Save(ctx context.Context, scope, destination string) error {
	if IsPublicAuthPath(destination) || !SafePath(destination) {
		return nil
	}
	if err := p.slot.Save(ctx, scope, destination, p.ttl); err != nil {
		return fmt.Errorf("save return-to: %w", err)
	}
	return nil
}

// Consume returns the destination to use after login. An explicit destination
// carried by the login request wins over the stored slot. Consume does not clear.
func (p *Preserver) Consume(ctx context.Context, scope, explicit string) (string, bool, error) {
	if usable(explicit) {
		return explicit, true, nil
	}
	stored, ok, err := p.slot.Load(ctx, scope)
	if err != nil {
		return "", false, fmt.Errorf("load return-to: %w", err)
	}
	if !ok || !usable(stored) {
		return "", false, nil
	}
	return stored, true, nil
}

// Clear empties the slot for scope.
func (p *Preserver) Clear(ctx context.Context, scope string) error {
	if err := p.slot.Clear(ctx, scope); err != nil {
		return fmt.Errorf("clear return-to: %w", err)
	}
	return nil
}

// BuildLoginNavigation returns the login redirect for a visitor at path with query.
// Visitors already on /login or /register get a bare login target. Otherwise the
// destination is saved and embedded as returnTo. The returned Navigation is usable
// even when saving fails, since the destination also travels in the URL.
func (p *Preserver) BuildLoginNavigation(ctx context.Context, scope, path string, q Query) (Navigation, error) {
	if IsPublicAuthPath(path) {
		return Navigation{Target: LoginPath, Search: Query{}}, nil
	}
	dest := BuildReturnTo(path, q)
	nav := Navigation{Target: LoginPath, Search: Query{}.Set(ParamReturnTo, dest)}
	if err := p.Save(ctx, scope, dest); err != nil {
		p.logger.WarnContext(ctx, "return-to slot unavailable", "error", err)
		return nav, err
	}
	return nav, nil
}

func usable(dest string) bool {
	return dest != "" && SafePath(dest) && !IsPublicAuthPath(dest)
}
