// Package guard decides, for a single navigation, whether a routed page renders
// or where the visitor is redirected instead. Decisions are pure functions of the
// authorization state and the navigation; executing them is the caller's job.
package guard

import (
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/returnto"
)

// HomePath is the fixed redirect target for admin and section refusals.
const HomePath = "/"

const (
	// ParamAccessDenied flags a section refusal on the home redirect.
	ParamAccessDenied = "accessDenied"
	// ParamReason carries the human-readable refusal message.
	ParamReason = "reason"
)

// Outcome is the guard verdict.
type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectHome
	RedirectDenied
	// Denied refuses a section that is already the home redirect target. The page
	// answers with the refusal instead of redirecting to itself.
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case RedirectDenied:
		return "redirect_denied"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Kind selects which guards wrap a route.
type Kind int

const (
	// KindAuthenticated requires a logged-in caller only.
	KindAuthenticated Kind = iota
	// KindSection composes Authenticated ⊇ Section(Page).
	KindSection
	// KindAdmin composes Authenticated ⊇ Admin.
	KindAdmin
)

// Route describes a guarded destination. Page keys visit tracking and, for
// sections, names the permission required.
type Route struct {
	Kind Kind
	Page domainauth.PageID
}

// Navigation is the attempted destination.
type Navigation struct {
	Path  string
	Query returnto.Query
}

// Decision is the result of evaluating a guard chain.
type Decision struct {
	Outcome Outcome
	// Target and Search describe the redirect for RedirectHome and RedirectDenied.
	// Denied carries the refusal parameters in Search with an empty Target.
	Target string
	Search returnto.Query
	// From is the attempted navigation for RedirectLogin, to be preserved.
	From Navigation
	// TrackPage is set when a rendered route counts as a page visit.
	TrackPage domainauth.PageID
}

// Rendered reports whether the route may render.
func (d Decision) Rendered() bool { return d.Outcome == Render }

// Authenticated sends unauthenticated callers to login carrying the attempted
// navigation. Authenticated callers render, and tracked pages count a visit.
func Authenticated(state domainauth.AuthorizationState, page domainauth.PageID, nav Navigation) Decision {
	if !state.IsAuthenticated() {
		return Decision{Outcome: RedirectLogin, From: nav}
	}
	d := Decision{Outcome: Render}
	if domainauth.IsTracked(page) {
		d.TrackPage = page
	}
	return d
}

// Admin redirects non-admins home without capturing a return-to.
func Admin(state domainauth.AuthorizationState) Decision {
	if !state.IsAdmin() {
		return Decision{Outcome: RedirectHome, Target: HomePath, Search: returnto.Query{}}
	}
	return Decision{Outcome: Render}
}

// Section checks the page permission for page. A refusal on HomePath itself is
// terminal, so a caller without the home page is never redirected in a loop.
func Section(state domainauth.AuthorizationState, page domainauth.PageID, nav Navigation) Decision {
	if state.IsAdmin() {
		return Decision{Outcome: Render}
	}
	if !state.IsAuthenticated() {
		return Decision{Outcome: RedirectLogin, From: nav}
	}
	if !state.HasPageAccess(page) {
		search := returnto.Query{}.
			Set(ParamAccessDenied, "true").
			Set(ParamReason, domainauth.MsgAccessDenied)
		if nav.Path == HomePath {
			return Decision{Outcome: Denied, Search: search}
		}
		return Decision{Outcome: RedirectDenied, Target: HomePath, Search: search}
	}
	return Decision{Outcome: Render}
}

// Evaluate runs the guard chain for route. The outer Authenticated guard decides
// first; the inner guard only runs once the caller is logged in. The visit is
// tracked only when the whole chain renders.
func Evaluate(state domainauth.AuthorizationState, route Route, nav Navigation) Decision {
	outer := Authenticated(state, route.Page, nav)
	if !outer.Rendered() {
		return outer
	}
	var inner Decision
	switch route.Kind {
	case KindSection:
		inner = Section(state, route.Page, nav)
	case KindAdmin:
		inner = Admin(state)
	default:
		return outer
	}
	if !inner.Rendered() {
		return inner
	}
	inner.TrackPage = outer.TrackPage
	return inner
}
