// Package models defines the request and response data structures used
// for communication between clients and the bookmark service.
package models

import (
	"net/url"

	"github.com/atinyakov/go-bookmarks/internal/storage"
)

// CreateBookmarkRequest is the body of POST /bookmark.
type CreateBookmarkRequest struct {
	// Title must match the configured allow-list pattern.
	Title string `json:"title" validate:"required,allowedchars"`

	// URL must be a well-formed absolute URL.
	URL string `json:"url" validate:"required,url"`
}

// SetForm fills the request from form values.
func (r *CreateBookmarkRequest) SetForm(v url.Values) {
	r.Title = v.Get("title")
	r.URL = v.Get("url")
}

// UpdateBookmarkRequest is the body of PUT /bookmark/{id}.
type UpdateBookmarkRequest struct {
	// Title may only contain letters.
	Title string `json:"title" validate:"required,alpha"`

	// URL must be a well-formed absolute URL.
	URL string `json:"url" validate:"required,url"`
}

// SetForm fills the request from form values.
func (r *UpdateBookmarkRequest) SetForm(v url.Values) {
	r.Title = v.Get("title")
	r.URL = v.Get("url")
}

// BookmarkResponse is returned by create, update and delete.
// The id and owner are intentionally left out.
type BookmarkResponse struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NewBookmarkResponse shapes a stored bookmark for the client.
func NewBookmarkResponse(b *storage.Bookmark) BookmarkResponse {
	return BookmarkResponse{Title: b.Title, URL: b.URL}
}
