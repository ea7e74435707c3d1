// Package auth contains domain-level types for accounts, authorization state, and page access.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"slices"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and JSON payloads.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// Account is the User Directory record for a single identity.
// CredentialSecret holds a one-way hash, never the presented secret.
type Account struct {
	Identity         string    `json:"identity"          db:"identity"`
	CredentialSecret string    `json:"-"                 db:"credential_secret"`
	DisplayName      string    `json:"display_name"      db:"display_name"`
	Role             Role      `json:"role"              db:"role"`
	Approved         bool      `json:"approved"          db:"approved"`
	AllowedPages     []PageID  `json:"allowed_pages"     db:"allowed_pages"`
	RegisteredAt     time.Time `json:"registered_at"     db:"registered_at"`
}

// IsAdmin reports whether the account has the admin role.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// EffectiveApproved applies the admin exemption: admins are always approved.
func (a Account) EffectiveApproved() bool { return a.IsAdmin() || a.Approved }

// HasPageAccess applies the admin exemption to the stored page set.
func (a Account) HasPageAccess(page PageID) bool {
	if a.IsAdmin() {
		return true
	}
	return slices.Contains(a.AllowedPages, page)
}

// AccountFields is a partial update for Upsert. Nil fields are left untouched.
type AccountFields struct {
	CredentialSecret *string
	DisplayName      *string
	Role             *Role
	Approved         *bool
	AllowedPages     *[]PageID
	RegisteredAt     *time.Time
}

// IsComplete reports whether the fields describe a full record suitable for creation.
func (f AccountFields) IsComplete() bool {
	return f.CredentialSecret != nil && f.DisplayName != nil && f.Role != nil
}

// IsCreate reports whether the fields describe a registration: a complete record
// stamped with RegisteredAt. Upserting one onto an existing identity is a duplicate.
func (f AccountFields) IsCreate() bool {
	return f.IsComplete() && f.RegisteredAt != nil
}

// Apply merges the non-nil fields into a copy of acc.
func (f AccountFields) Apply(acc Account) Account {
	if f.CredentialSecret != nil {
		acc.CredentialSecret = *f.CredentialSecret
	}
	if f.DisplayName != nil {
		acc.DisplayName = *f.DisplayName
	}
	if f.Role != nil {
		acc.Role = *f.Role
	}
	if f.Approved != nil {
		acc.Approved = *f.Approved
	}
	if f.AllowedPages != nil {
		acc.AllowedPages = slices.Clone(*f.AllowedPages)
	}
	if f.RegisteredAt != nil {
		acc.RegisteredAt = *f.RegisteredAt
	}
	if acc.AllowedPages == nil {
		acc.AllowedPages = []PageID{}
	}
	return acc
}

// NormalizeIdentity trims and lower-cases an identity so lookups are case-insensitive.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// AuthorizationState is the per-session view of the caller used for permission decisions.
// A zero value is the logged-out state; a populated value always carries a role.
type AuthorizationState struct {
	Role         Role     `json:"role,omitempty"`
	Approved     bool     `json:"approved"`
	AllowedPages []PageID `json:"allowed_pages"`
	Identity     string   `json:"identity,omitempty"`
	DisplayName  string   `json:"display_name,omitempty"`
}

// StateFromAccount builds the authorization state granted by a successful login.
func StateFromAccount(acc Account) AuthorizationState {
	pages := slices.Clone(acc.AllowedPages)
	if pages == nil {
		pages = []PageID{}
	}
	return AuthorizationState{
		Role:         acc.Role,
		Approved:     acc.EffectiveApproved(),
		AllowedPages: pages,
		Identity:     acc.Identity,
		DisplayName:  acc.DisplayName,
	}
}

// IsAuthenticated reports whether the state carries a role.
func (s AuthorizationState) IsAuthenticated() bool { return s.Role != "" }

// IsAdmin reports whether the state belongs to an admin.
func (s AuthorizationState) IsAdmin() bool { return s.Role == RoleAdmin }

// HasPageAccess is true for admins, otherwise true only for pages in AllowedPages.
func (s AuthorizationState) HasPageAccess(page PageID) bool {
	if s.IsAdmin() {
		return true
	}
	return slices.Contains(s.AllowedPages, page)
}

// Clone returns a deep copy so callers cannot mutate shared slices.
func (s AuthorizationState) Clone() AuthorizationState {
	out := s
	if s.AllowedPages != nil {
		out.AllowedPages = slices.Clone(s.AllowedPages)
	} else {
		out.AllowedPages = []PageID{}
	}
	return out
}
