package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/go-bookmarks/internal/errs"
	"github.com/atinyakov/go-bookmarks/internal/storage"
)

type BookmarkService struct {
	repository Storage
	logger     *zap.Logger
}

func NewBookmark(repo Storage, logger *zap.Logger) *BookmarkService {
	return &BookmarkService{
		repository: repo,
		logger:     logger,
	}
}

func (s *BookmarkService) PingContext(ctx context.Context) error {
	if err := s.repository.PingContext(ctx); err != nil {
		return errs.NewStore(err)
	}
	return nil
}

// owner resolves the user a verified token refers to. A token for a user the
// store does not know is treated as an authentication failure.
func (s *BookmarkService) owner(ctx context.Context, username string) (*storage.User, error) {
	u, err := s.repository.FindByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errs.NewUnauthorized(fmt.Errorf("unknown user %q", username))
	}
	if err != nil {
		return nil, s.storeError("find user", err)
	}
	return u, nil
}

func (s *BookmarkService) storeError(op string, err error) error {
	s.logger.Error("store failure", zap.String("op", op), zap.Error(err))
	return errs.NewStore(fmt.Errorf("%s: %w", op, err))
}

// List returns every bookmark owned by username.
func (s *BookmarkService) List(ctx context.Context, username string) ([]storage.Bookmark, error) {
	owner, err := s.owner(ctx, username)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.repository.FindByOwner(ctx, owner.ID)
	if err != nil {
		return nil, s.storeError("list", err)
	}
	if bookmarks == nil {
		bookmarks = make([]storage.Bookmark, 0)
	}
	return bookmarks, nil
}

func (s *BookmarkService) Create(ctx context.Context, username, title, url string) (*storage.Bookmark, error) {
	owner, err := s.owner(ctx, username)
	if err != nil {
		return nil, err
	}

	b, err := s.repository.Create(ctx, storage.Bookmark{Title: title, URL: url, OwnerID: owner.ID})
	if err != nil {
		return nil, s.storeError("create", err)
	}

	s.logger.Debug("bookmark created", zap.String("id", b.ID), zap.String("owner", username))
	return b, nil
}

// findOwned is the existence check shared by Update and Delete.
func (s *BookmarkService) findOwned(ctx context.Context, id, ownerID string) error {
	if id == "" {
		return errs.NewNotFound(id)
	}

	_, err := s.repository.FindOne(ctx, id, ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		return errs.NewNotFound(id)
	}
	if err != nil {
		return s.storeError("find bookmark", err)
	}
	return nil
}

// Update sets title and url of the bookmark id owned by username. The write
// stays scoped by owner, so a bookmark removed or reassigned after the check
// still ends as NOT_FOUND.
func (s *BookmarkService) Update(ctx context.Context, username, id, title, url string) (*storage.Bookmark, error) {
	owner, err := s.owner(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.findOwned(ctx, id, owner.ID); err != nil {
		return nil, err
	}

	b, err := s.repository.Update(ctx, storage.Bookmark{ID: id, OwnerID: owner.ID, Title: title, URL: url})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errs.NewNotFound(id)
	}
	if err != nil {
		return nil, s.storeError("update", err)
	}
	return b, nil
}

// Delete removes the bookmark id owned by username and returns it.
func (s *BookmarkService) Delete(ctx context.Context, username, id string) (*storage.Bookmark, error) {
	owner, err := s.owner(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.findOwned(ctx, id, owner.ID); err != nil {
		return nil, err
	}

	b, err := s.repository.Delete(ctx, id, owner.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errs.NewNotFound(id)
	}
	if err != nil {
		return nil, s.storeError("delete", err)
	}
	return b, nil
}
