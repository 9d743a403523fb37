// Package repository implements bookmark storage on PostgreSQL through
// database/sql and the pgx stdlib driver.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/atinyakov/go-bookmarks/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username TEXT UNIQUE NOT NULL
	);
	CREATE TABLE IF NOT EXISTS bookmarks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS bookmarks_owner_id_idx ON bookmarks (owner_id);`

// InitDB opens the connection pool, checks it and makes sure the tables exist.
func InitDB(ctx context.Context, dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info("Database connected and tables ready.")
	return db, nil
}

type BookmarkRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateBookmarkRepository(db *sql.DB, logger *zap.Logger) *BookmarkRepository {
	return &BookmarkRepository{
		db:     db,
		logger: logger,
	}
}

// mapError turns "no row" and malformed-uuid failures into storage.ErrNotFound.
// An id that is not a UUID can never match, so it is not an error of the store.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
		return storage.ErrNotFound
	}

	return err
}

func (r *BookmarkRepository) FindByUsername(ctx context.Context, username string) (*storage.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, username FROM users WHERE username = $1;", username)

	var u storage.User
	if err := row.Scan(&u.ID, &u.Username); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *BookmarkRepository) EnsureUser(ctx context.Context, username string) (*storage.User, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username) VALUES ($1)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username;`,
		username,
	)

	var u storage.User
	if err := row.Scan(&u.ID, &u.Username); err != nil {
		r.logger.Error("EnsureUser", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func (r *BookmarkRepository) FindByOwner(ctx context.Context, ownerID string) ([]storage.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, url, owner_id FROM bookmarks WHERE owner_id = $1 ORDER BY created_at;",
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]storage.Bookmark, 0)
	for rows.Next() {
		var b storage.Bookmark
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &b.OwnerID); err != nil {
			return nil, err
		}
		records = append(records, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *BookmarkRepository) FindOne(ctx context.Context, id, ownerID string) (*storage.Bookmark, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, title, url, owner_id FROM bookmarks WHERE id = $1 AND owner_id = $2;",
		id, ownerID,
	)
	return scanBookmark(row)
}

func (r *BookmarkRepository) Create(ctx context.Context, b storage.Bookmark) (*storage.Bookmark, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO bookmarks (title, url, owner_id) VALUES ($1, $2, $3) RETURNING id, title, url, owner_id;",
		b.Title, b.URL, b.OwnerID,
	)
	return scanBookmark(row)
}

func (r *BookmarkRepository) Update(ctx context.Context, b storage.Bookmark) (*storage.Bookmark, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE bookmarks SET title = $1, url = $2 WHERE id = $3 AND owner_id = $4 RETURNING id, title, url, owner_id;",
		b.Title, b.URL, b.ID, b.OwnerID,
	)
	return scanBookmark(row)
}

func (r *BookmarkRepository) Delete(ctx context.Context, id, ownerID string) (*storage.Bookmark, error) {
	row := r.db.QueryRowContext(ctx,
		"DELETE FROM bookmarks WHERE id = $1 AND owner_id = $2 RETURNING id, title, url, owner_id;",
		id, ownerID,
	)
	return scanBookmark(row)
}

func (r *BookmarkRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanBookmark(row *sql.Row) (*storage.Bookmark, error) {
	var b storage.Bookmark
	if err := row.Scan(&b.ID, &b.Title, &b.URL, &b.OwnerID); err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}
