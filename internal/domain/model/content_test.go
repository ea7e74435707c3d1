package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateContentRequest_Validate(t *testing.T) {
	valid := func() CreateContentRequest {
		return CreateContentRequest{
			Title:       "Launch stream",
			ContentType: ContentTypeLiveEmbed,
			URL:         "https://example.com/live",
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateContentRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(*CreateContentRequest) {}},
		{name: "blank title", mutate: func(r *CreateContentRequest) { r.Title = "  " }, wantErr: "title is required"},
		{
			name:    "long title",
			mutate:  func(r *CreateContentRequest) { r.Title = strings.Repeat("a", 201) },
			wantErr: "title cannot exceed",
		},
		{
			name:    "unknown type",
			mutate:  func(r *CreateContentRequest) { r.ContentType = "podcast" },
			wantErr: "not supported",
		},
		{
			name:    "non http url",
			mutate:  func(r *CreateContentRequest) { r.URL = "ftp://example.com/file" },
			wantErr: "valid http(s) URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestContentItem_Visible(t *testing.T) {
	assert.True(t, ContentItem{Status: ContentStatus{Enabled: true}}.Visible())
	assert.False(t, ContentItem{Status: ContentStatus{Enabled: true, Deleted: true}}.Visible())
	assert.False(t, ContentItem{}.Visible())
}
