package service

import (
	"context"

	"github.com/atinyakov/go-bookmarks/internal/storage"
)

// Storage is implemented by every bookmark backend: memory, file and PostgreSQL.
// Lookups that match nothing return storage.ErrNotFound.
type Storage interface {
	FindByUsername(context.Context, string) (*storage.User, error)
	EnsureUser(context.Context, string) (*storage.User, error)
	FindByOwner(context.Context, string) ([]storage.Bookmark, error)
	FindOne(ctx context.Context, id, ownerID string) (*storage.Bookmark, error)
	Create(context.Context, storage.Bookmark) (*storage.Bookmark, error)
	Update(context.Context, storage.Bookmark) (*storage.Bookmark, error)
	Delete(ctx context.Context, id, ownerID string) (*storage.Bookmark, error)
	PingContext(context.Context) error
}

// BookmarkServiceIface is what the transports call. Every returned error is
// an *errs.Error.
type BookmarkServiceIface interface {
	List(ctx context.Context, username string) ([]storage.Bookmark, error)
	Create(ctx context.Context, username, title, url string) (*storage.Bookmark, error)
	Update(ctx context.Context, username, id, title, url string) (*storage.Bookmark, error)
	Delete(ctx context.Context, username, id string) (*storage.Bookmark, error)
	PingContext(ctx context.Context) error
}
