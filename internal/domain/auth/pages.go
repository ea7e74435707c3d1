package auth

import "slices"

// PageID identifies a guarded section of the portal.
type PageID string

const (
	PageHome      PageID = "home"
	PageVideos    PageID = "videos"
	PagePortfolio PageID = "portfolio"
	PageIntelus   PageID = "intelus"
	PageLive      PageID = "live"
	PageMyVideos  PageID = "myVideos"
	PageMyFiles   PageID = "myFiles"
	PageAdmin     PageID = "admin"
)

// catalog is the set of grantable page identifiers, in display order.
// It matches the guarded route set exactly.
//
//nolint:gochecknoglobals // static read-only lookup
var catalog = []PageID{
	PageHome,
	PageVideos,
	PagePortfolio,
	PageIntelus,
	PageLive,
	PageMyVideos,
	PageMyFiles,
	PageAdmin,
}

// trackedPages are the routes that count toward page-visit analytics.
//
//nolint:gochecknoglobals // static read-only lookup
var trackedPages = []PageID{PageHome, PageVideos, PagePortfolio, PageAdmin}

// Catalog returns a copy of the grantable page identifiers.
func Catalog() []PageID { return slices.Clone(catalog) }

// InCatalog reports whether p may be granted through the admin editor.
func InCatalog(p PageID) bool { return slices.Contains(catalog, p) }

// TrackedPages returns a copy of the page identifiers counted by analytics.
func TrackedPages() []PageID { return slices.Clone(trackedPages) }

// IsTracked reports whether visits to p are counted.
func IsTracked(p PageID) bool { return slices.Contains(trackedPages, p) }
