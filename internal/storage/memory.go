package storage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type MemoryStorage struct {
	mu        sync.RWMutex
	users     map[string]User     // by username
	bookmarks map[string]Bookmark // by id
	order     []string            // bookmark ids in insertion order
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:     make(map[string]User),
		bookmarks: make(map[string]Bookmark),
	}, nil
}

func (m *MemoryStorage) FindByUsername(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// EnsureUser returns the user with the given name, creating it if needed.
func (m *MemoryStorage) EnsureUser(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[username]; ok {
		return &u, nil
	}

	u := User{ID: uuid.NewString(), Username: username}
	m.users[username] = u
	return &u, nil
}

func (m *MemoryStorage) FindByOwner(_ context.Context, ownerID string) ([]Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Bookmark, 0)
	for _, id := range m.order {
		if b := m.bookmarks[id]; b.OwnerID == ownerID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *MemoryStorage) FindOne(_ context.Context, id, ownerID string) (*Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookmarks[id]
	if !ok || b.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemoryStorage) Create(_ context.Context, b Bookmark) (*Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b.ID = uuid.NewString()
	m.bookmarks[b.ID] = b
	m.order = append(m.order, b.ID)
	return &b, nil
}

// Update replaces title and url of the bookmark matching both b.ID and b.OwnerID.
func (m *MemoryStorage) Update(_ context.Context, b Bookmark) (*Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.bookmarks[b.ID]
	if !ok || cur.OwnerID != b.OwnerID {
		return nil, ErrNotFound
	}

	cur.Title = b.Title
	cur.URL = b.URL
	m.bookmarks[b.ID] = cur
	return &cur, nil
}

// Delete removes the bookmark matching id and ownerID and returns it.
func (m *MemoryStorage) Delete(_ context.Context, id, ownerID string) (*Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookmarks[id]
	if !ok || b.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	delete(m.bookmarks, id)
	m.order = slices.DeleteFunc(m.order, func(v string) bool { return v == id })
	return &b, nil
}

func (m *MemoryStorage) PingContext(_ context.Context) error {
	return errors.ErrUnsupported
}

// snapshot copies the current state, users first.
func (m *MemoryStorage) snapshot() ([]User, []Bookmark) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b User) int {
		return strings.Compare(a.Username, b.Username)
	})

	bookmarks := make([]Bookmark, 0, len(m.order))
	for _, id := range m.order {
		bookmarks = append(bookmarks, m.bookmarks[id])
	}
	return users, bookmarks
}

func (m *MemoryStorage) restoreUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[u.Username] = u
}

func (m *MemoryStorage) restoreBookmark(b Bookmark) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookmarks[b.ID]; !ok {
		m.order = append(m.order, b.ID)
	}
	m.bookmarks[b.ID] = b
}

// reset replaces the whole state with a snapshot taken earlier.
func (m *MemoryStorage) reset(users []User, bookmarks []Bookmark) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[string]User, len(users))
	for _, u := range users {
		m.users[u.Username] = u
	}

	m.bookmarks = make(map[string]Bookmark, len(bookmarks))
	m.order = make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		m.bookmarks[b.ID] = b
		m.order = append(m.order, b.ID)
	}
}
