package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atinyakov/go-bookmarks/internal/app/service"
	"github.com/atinyakov/go-bookmarks/internal/errs"
	"github.com/atinyakov/go-bookmarks/internal/mocks"
	"github.com/atinyakov/go-bookmarks/internal/storage"
)

var alice = &storage.User{ID: "user-1", Username: "alice"}

func setupService(t *testing.T) (*mocks.MockStorage, *service.BookmarkService) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockStorage(ctrl)
	return repo, service.NewBookmark(repo, zap.NewNop())
}

func requireNotFound(t *testing.T, err error, id string) {
	t.Helper()

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, errs.KindNotFound, e.Kind)
	require.Equal(t, errs.MsgBookmarkNotFound, e.Message)
	require.NotNil(t, e.ID)
	require.Equal(t, id, *e.ID)
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("owned bookmarks", func(t *testing.T) {
		repo, svc := setupService(t)
		owned := []storage.Bookmark{{ID: "b1", Title: "t", URL: "http://a.com", OwnerID: alice.ID}}

		repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil)
		repo.EXPECT().FindByOwner(gomock.Any(), alice.ID).Return(owned, nil)

		got, err := svc.List(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, owned, got)
	})

	t.Run("nil becomes empty", func(t *testing.T) {
		repo, svc := setupService(t)

		repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil)
		repo.EXPECT().FindByOwner(gomock.Any(), alice.ID).Return(nil, nil)

		got, err := svc.List(ctx, "alice")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo, svc := setupService(t)

		repo.EXPECT().FindByUsername(gomock.Any(), "mallory").Return(nil, storage.ErrNotFound)

		_, err := svc.List(ctx, "mallory")
		assert.Equal(t, errs.KindUnauthorized, errs.KindOf(err))
	})

	t.Run("store failure", func(t *testing.T) {
		repo, svc := setupService(t)
		boom := errors.New("connection refused")

		repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil)
		repo.EXPECT().FindByOwner(gomock.Any(), alice.ID).Return(nil, boom)

		_, err := svc.List(ctx, "alice")
		assert.Equal(t, errs.KindStore, errs.KindOf(err))
		assert.ErrorIs(t, err, boom)
	})
}

func TestCreate(t *testing.T) {
	repo, svc := setupService(t)

	repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil)
	repo.EXPECT().
		Create(gomock.Any(), storage.Bookmark{Title: "mytitle", URL: "http://example.com", OwnerID: alice.ID}).
		Return(&storage.Bookmark{ID: "b1", Title: "mytitle", URL: "http://example.com", OwnerID: alice.ID}, nil)

	b, err := svc.Create(context.Background(), "alice", "mytitle", "http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	existing := &storage.Bookmark{ID: "b1", Title: "old", URL: "http://old.com", OwnerID: alice.ID}

	t.Run("owned", func(t *testing.T) {
		repo, svc := setupService(t)
		want := &storage.Bookmark{ID: "b1", Title: "abc", URL: "http://example.com", OwnerID: alice.ID}

		gomock.InOrder(
			repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil),
			repo.EXPECT().FindOne(gomock.Any(), "b1", alice.ID).Return(existing, nil),
			repo.EXPECT().Update(gomock.Any(), *want).Return(want, nil),
		)

		got, err := svc.Update(ctx, "alice", "b1", "abc", "http://example.com")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("not owned", func(t *testing.T) {
		repo, svc := setupService(t)

		repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil)
		repo.EXPECT().FindOne(gomock.Any(), "b2", alice.ID).Return(nil, storage.ErrNotFound)

		_, err := svc.Update(ctx, "alice", "b2", "abc", "http://example.com")
		requireNotFound(t, err, "b2")
	})

	t.Run("missing id", func(t *testing.T) {
		repo, svc := setupService(t)

		repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil)

		_, err := svc.Update(ctx, "alice", "", "abc", "http://example.com")
		requireNotFound(t, err, "")
	})

	t.Run("removed between check and write", func(t *testing.T) {
		repo, svc := setupService(t)

		repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil)
		repo.EXPECT().FindOne(gomock.Any(), "b1", alice.ID).Return(existing, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)

		_, err := svc.Update(ctx, "alice", "b1", "abc", "http://example.com")
		requireNotFound(t, err, "b1")
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	existing := &storage.Bookmark{ID: "b1", Title: "t", URL: "http://a.com", OwnerID: alice.ID}

	t.Run("owned", func(t *testing.T) {
		repo, svc := setupService(t)

		gomock.InOrder(
			repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil),
			repo.EXPECT().FindOne(gomock.Any(), "b1", alice.ID).Return(existing, nil),
			repo.EXPECT().Delete(gomock.Any(), "b1", alice.ID).Return(existing, nil),
		)

		got, err := svc.Delete(ctx, "alice", "b1")
		require.NoError(t, err)
		assert.Equal(t, existing, got)
	})

	t.Run("not owned", func(t *testing.T) {
		repo, svc := setupService(t)

		repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(alice, nil)
		repo.EXPECT().FindOne(gomock.Any(), "nope", alice.ID).Return(nil, storage.ErrNotFound)

		_, err := svc.Delete(ctx, "alice", "nope")
		requireNotFound(t, err, "nope")
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo, svc := setupService(t)

		repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(nil, errors.New("timeout"))

		_, err := svc.Delete(ctx, "alice", "b1")
		assert.Equal(t, errs.KindStore, errs.KindOf(err))
	})
}

func TestPingContext(t *testing.T) {
	repo, svc := setupService(t)

	repo.EXPECT().PingContext(gomock.Any()).Return(nil)
	assert.NoError(t, svc.PingContext(context.Background()))

	repo.EXPECT().PingContext(gomock.Any()).Return(errors.ErrUnsupported)
	assert.Equal(t, errs.KindStore, errs.KindOf(svc.PingContext(context.Background())))
}
