//revive:disable-next-line:var-naming // legacy package name used across the project
package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxContentTitleLen       = 200
	maxContentDescriptionLen = 4000
	maxContentURLLen         = 2048
)

// ErrContentNotFound is returned for unknown or deleted content IDs.
var ErrContentNotFound = errors.New("content item not found")

// ErrInvalidContent wraps request validation failures.
var ErrInvalidContent = errors.New("invalid content")

// ContentType enumerates the kinds of items the portal can display.
type ContentType string

const (
	ContentTypeLiveEmbed ContentType = "liveEmbed"
	ContentTypeVideoFile ContentType = "videoFile"
	ContentTypeVideoLink ContentType = "videoLink"
	ContentTypeDocument  ContentType = "document"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeLiveEmbed, ContentTypeVideoFile, ContentTypeVideoLink, ContentTypeDocument:
		return true
	default:
		return false
	}
}

// ContentStatus tracks visibility. Deleted items are never returned by list operations.
type ContentStatus struct {
	Enabled bool `json:"enabled"`
	Deleted bool `json:"deleted"`
}

// ContentItem is a single piece of portal content.
type ContentItem struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ContentType ContentType   `json:"content_type"`
	URL         string        `json:"url"`
	Status      ContentStatus `json:"status"`
	CreatedBy   string        `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Visible reports whether non-admin callers may see the item.
func (c ContentItem) Visible() bool { return c.Status.Enabled && !c.Status.Deleted }

// CreateContentRequest contains fields to add a content item.
type CreateContentRequest struct {
	Title       string      `json:"title"        validate:"required,max=200"`
	Description string      `json:"description"  validate:"max=4000"`
	ContentType ContentType `json:"content_type" validate:"required"`
	URL         string      `json:"url"          validate:"required,url,max=2048"`
	Enabled     *bool       `json:"enabled,omitempty"`
	CreatedBy   string      `json:"-"`
}

// Validate checks the request independently of any transport-level validation.
func (r *CreateContentRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxContentTitleLen {
		return fmt.Errorf("title cannot exceed %d characters", maxContentTitleLen)
	}
	if utf8.RuneCountInString(r.Description) > maxContentDescriptionLen {
		return fmt.Errorf("description cannot exceed %d characters", maxContentDescriptionLen)
	}
	if !r.ContentType.Valid() {
		return fmt.Errorf("content_type %q is not supported", r.ContentType)
	}
	if utf8.RuneCountInString(r.URL) > maxContentURLLen {
		return fmt.Errorf("url cannot exceed %d characters", maxContentURLLen)
	}
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("url must be a valid http(s) URL")
	}
	return nil
}

// Normalize trims user-supplied text fields in place.
func (r *CreateContentRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.URL = strings.TrimSpace(r.URL)
}
