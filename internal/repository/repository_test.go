package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/go-bookmarks/internal/storage"
)

var bookmarkColumns = []string{"id", "title", "url", "owner_id"}

// Helper to set up a mock DB and repository
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *BookmarkRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := CreateBookmarkRepository(db, zap.NewNop())
	return db, mock, repo
}

func TestFindByUsername(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username FROM users WHERE username = $1;`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow("user-1", "alice"))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username FROM users WHERE username = $1;`)).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	u, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, storage.User{ID: "user-1", Username: "alice"}, *u)

	_, err = repo.FindByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureUser(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow("user-1", "alice"))

	u, err := repo.EnsureUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByOwner(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, url, owner_id FROM bookmarks WHERE owner_id = $1`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(bookmarkColumns).
			AddRow("id-1", "first", "https://example.com", "user-1").
			AddRow("id-2", "second", "https://example2.com", "user-1"))

	result, err := repo.FindByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "https://example.com", result[0].URL)
	assert.Equal(t, "id-2", result[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByOwner_Empty(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, title, url, owner_id FROM bookmarks`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(bookmarkColumns))

	result, err := repo.FindByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestFindOne(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		rows    *sqlmock.Rows
		err     error
		wantErr error
	}{
		{
			name: "found",
			id:   "0f8fad5b-d9cb-469f-a165-70867728950e",
			rows: sqlmock.NewRows(bookmarkColumns).AddRow("0f8fad5b-d9cb-469f-a165-70867728950e", "t", "http://a.com", "user-1"),
		},
		{
			name:    "no rows",
			id:      "0f8fad5b-d9cb-469f-a165-70867728950e",
			rows:    sqlmock.NewRows(bookmarkColumns),
			wantErr: storage.ErrNotFound,
		},
		{
			name:    "malformed uuid",
			id:      "not-a-uuid",
			err:     &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation},
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, repo := setupMockDB(t)

			exp := mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, url, owner_id FROM bookmarks WHERE id = $1 AND owner_id = $2;`)).
				WithArgs(tt.id, "user-1")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			b, err := repo.FindOne(context.Background(), tt.id, "user-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, b.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	record := storage.Bookmark{Title: "mytitle", URL: "http://example.com", OwnerID: "user-1"}

	mock.ExpectQuery(`INSERT INTO bookmarks`).
		WithArgs(record.Title, record.URL, record.OwnerID).
		WillReturnRows(sqlmock.NewRows(bookmarkColumns).AddRow("generated-uuid", record.Title, record.URL, record.OwnerID))

	result, err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "generated-uuid", result.ID)
	assert.Equal(t, record.Title, result.Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`UPDATE bookmarks SET title = \$1, url = \$2 WHERE id = \$3 AND owner_id = \$4`).
		WithArgs("abc", "http://example.com", "id-1", "user-1").
		WillReturnRows(sqlmock.NewRows(bookmarkColumns).AddRow("id-1", "abc", "http://example.com", "user-1"))

	mock.ExpectQuery(`UPDATE bookmarks`).
		WithArgs("abc", "http://example.com", "id-1", "user-2").
		WillReturnRows(sqlmock.NewRows(bookmarkColumns))

	updated, err := repo.Update(context.Background(), storage.Bookmark{ID: "id-1", OwnerID: "user-1", Title: "abc", URL: "http://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "abc", updated.Title)

	_, err = repo.Update(context.Background(), storage.Bookmark{ID: "id-1", OwnerID: "user-2", Title: "abc", URL: "http://example.com"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`DELETE FROM bookmarks WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("id-1", "user-1").
		WillReturnRows(sqlmock.NewRows(bookmarkColumns).AddRow("id-1", "t", "http://a.com", "user-1"))

	deleted, err := repo.Delete(context.Background(), "id-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "http://a.com", deleted.URL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreFailurePassesThrough(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT id, title, url, owner_id FROM bookmarks`).
		WithArgs("user-1").
		WillReturnError(boom)

	_, err := repo.FindByOwner(context.Background(), "user-1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestPingContext(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	repo := CreateBookmarkRepository(db, zap.NewNop())

	mock.ExpectPing()
	assert.NoError(t, repo.PingContext(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
