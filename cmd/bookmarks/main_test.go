package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/go-bookmarks/internal/app/service"
	"github.com/atinyakov/go-bookmarks/internal/config"
	"github.com/atinyakov/go-bookmarks/internal/logger"
	"github.com/atinyakov/go-bookmarks/internal/storage"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{"CONFIG", "JWT_SECRET", "DATABASE_DSN", "FILE_STORAGE_PATH", "SERVER_ADDRESS", "GRPC_ADDRESS", "USERS", "ENABLE_HTTPS"} {
		t.Setenv(name, "")
	}
	t.Chdir(t.TempDir())
}

func TestRun_IssueToken(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-j", "secret", "-issue-token", "alice"}, &out, logger.New())
	require.NoError(t, err)

	claims, err := service.NewAuth("secret", 0).ParseRawJWT(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestRun_MissingSecret(t *testing.T) {
	isolate(t)

	err := run(context.Background(), nil, &bytes.Buffer{}, logger.New())
	require.ErrorIs(t, err, config.ErrNoSecret)
}

func TestRun_SeedsUsersAndStops(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bookmarks.jsonl")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, []string{"-j", "secret", "-a", "127.0.0.1:0", "-f", path, "-u", "alice,bob", "-l", "error"}, &bytes.Buffer{}, logger.New())
	require.NoError(t, err)

	s, err := storage.NewFileStorage(path, zap.NewNop())
	require.NoError(t, err)
	for _, name := range []string{"alice", "bob"} {
		u, err := s.FindByUsername(context.Background(), name)
		require.NoError(t, err)
		assert.Equal(t, name, u.Username)
	}
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := openStorage(ctx, &config.Options{}, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &storage.MemoryStorage{}, s)

	s, closeFn, err = openStorage(ctx, &config.Options{FilePath: filepath.Join(t.TempDir(), "db.jsonl")}, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &storage.FileStorage{}, s)
}
