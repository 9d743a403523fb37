package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// fileRecord is one JSON line of the storage file.
type fileRecord struct {
	User     *User     `json:"user,omitempty"`
	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// FileStorage keeps everything in memory and rewrites the storage file
// after every mutation. A mutation whose write fails is undone in memory.
type FileStorage struct {
	*MemoryStorage

	path    string
	writeMu sync.Mutex // serializes mutate
	logger  *zap.Logger
}

// NewFileStorage opens p, creating it and its directory when missing, and
// loads the records it already holds.
func NewFileStorage(p string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0770); err != nil {
		return nil, err
	}

	mem, err := CreateMemoryStorage()
	if err != nil {
		return nil, err
	}

	fs := &FileStorage{
		MemoryStorage: mem,
		path:          p,
		logger:        logger,
	}

	if err := fs.load(); err != nil {
		return nil, err
	}

	return fs, nil
}

func (fs *FileStorage) load() error {
	file, err := os.OpenFile(fs.path, os.O_RDONLY|os.O_CREATE, 0660)
	if err != nil {
		return err
	}
	defer file.Close()

	// Records have no size limit, so lines are read whole instead of scanned.
	reader := bufio.NewReader(file)
	line := 0
	for {
		raw, err := reader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("error reading file: %w", err)
		}
		if len(raw) > 0 {
			line++
		}

		if raw = bytes.TrimSpace(raw); len(raw) > 0 {
			var r fileRecord
			if uErr := json.Unmarshal(raw, &r); uErr != nil {
				return fmt.Errorf("failed to parse JSON line %d: %w", line, uErr)
			}

			switch {
			case r.User != nil:
				fs.restoreUser(*r.User)
			case r.Bookmark != nil:
				fs.restoreBookmark(*r.Bookmark)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	fs.logger.Info("storage file loaded", zap.String("path", fs.path), zap.Int("lines", line))
	return nil
}

// flush writes users and bookmarks to a temporary file and renames it over
// the storage file.
func (fs *FileStorage) flush(users []User, bookmarks []Bookmark) error {

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := range users {
		if err := enc.Encode(fileRecord{User: &users[i]}); err != nil {
			tmp.Close()
			return err
		}
	}
	for i := range bookmarks {
		if err := enc.Encode(fileRecord{Bookmark: &bookmarks[i]}); err != nil {
			tmp.Close()
			return err
		}
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), fs.path)
}

// mutate runs op against memory and writes the result to the file. If the
// write fails, memory is reset to the state before op.
func (fs *FileStorage) mutate(name string, op func() error) error {
	fs.writeMu.Lock()
	defer fs.writeMu.Unlock()

	users, bookmarks := fs.snapshot()
	if err := op(); err != nil {
		return err
	}

	if err := fs.flush(fs.snapshot()); err != nil {
		fs.reset(users, bookmarks)
		fs.logger.Error("cannot write storage file", zap.String("op", name), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (fs *FileStorage) EnsureUser(ctx context.Context, username string) (*User, error) {
	var u *User
	err := fs.mutate("ensure user", func() (err error) {
		u, err = fs.MemoryStorage.EnsureUser(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (fs *FileStorage) Create(ctx context.Context, b Bookmark) (*Bookmark, error) {
	var created *Bookmark
	err := fs.mutate("create", func() (err error) {
		created, err = fs.MemoryStorage.Create(ctx, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (fs *FileStorage) Update(ctx context.Context, b Bookmark) (*Bookmark, error) {
	var updated *Bookmark
	err := fs.mutate("update", func() (err error) {
		updated, err = fs.MemoryStorage.Update(ctx, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (fs *FileStorage) Delete(ctx context.Context, id, ownerID string) (*Bookmark, error) {
	var deleted *Bookmark
	err := fs.mutate("delete", func() (err error) {
		deleted, err = fs.MemoryStorage.Delete(ctx, id, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// PingContext checks that the storage file is still reachable.
func (fs *FileStorage) PingContext(_ context.Context) error {
	_, err := os.Stat(fs.path)
	return err
}
