// Package postgres implements the durable side of the dual-backend store
// on PostgreSQL. Every transport, authentication, or query failure is
// folded into showcase.ErrBackendUnavailable so the composing store has a
// single fallback branch; only a successful query that finds no row
// surfaces a not-found error.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-showcase/pkg/showcase"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements showcase.Store using PostgreSQL
type Store struct {
	db DBTX
}

// New creates a new PostgreSQL store
func New(db DBTX) showcase.Store {
	return &Store{db: db}
}

// NewWithPool creates a new PostgreSQL store with connection pool
func NewWithPool(pool *pgxpool.Pool) showcase.Store {
	return &Store{db: pool}
}

// unavailable folds a backend failure into the single Unavailable signal.
// Context timeouts land here too: a slow primary is treated the same as
// an unreachable one.
func unavailable(op string, err error) error {
	return &showcase.StoreError{
		Backend: "postgres",
		Op:      op,
		Err:     fmt.Errorf("%w: %v", showcase.ErrBackendUnavailable, err),
	}
}

// Item operations

func (s *Store) ListItems(ctx context.Context, status *showcase.SubmissionStatus) ([]*showcase.ContentItem, error) {
	query := `
        SELECT id, title, category, author, url, thumbnail_url, status, created_at, updated_at
        FROM content_items`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list items", err)
	}
	defer rows.Close()

	var items []*showcase.ContentItem
	for rows.Next() {
		var item showcase.ContentItem
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Category, &item.Author,
			&item.URL, &item.ThumbnailURL, &item.Status,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, unavailable("list items", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list items", err)
	}

	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*showcase.ContentItem, error) {
	query := `
        SELECT id, title, category, author, url, thumbnail_url, status, created_at, updated_at
        FROM content_items WHERE id = $1`

	var item showcase.ContentItem
	err := s.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Title, &item.Category, &item.Author,
		&item.URL, &item.ThumbnailURL, &item.Status,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, showcase.ErrItemNotFound
		}
		return nil, unavailable("get item", err)
	}

	return &item, nil
}

func (s *Store) PutItem(ctx context.Context, item *showcase.ContentItem) error {
	query := `
        INSERT INTO content_items (id, title, category, author, url, thumbnail_url, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            category = EXCLUDED.category,
            author = EXCLUDED.author,
            url = EXCLUDED.url,
            thumbnail_url = EXCLUDED.thumbnail_url,
            status = EXCLUDED.status,
            updated_at = EXCLUDED.updated_at`

	_, err := s.db.Exec(ctx, query,
		item.ID, item.Title, item.Category, item.Author,
		item.URL, item.ThumbnailURL, string(item.Status),
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return unavailable("put item", err)
	}

	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM content_items WHERE id = $1`, id)
	if err != nil {
		return unavailable("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return showcase.ErrItemNotFound
	}

	return nil
}

// Usage-counter operations. The counters live in a single-row table; an
// absent row reads as zero counters, not as an error.

func (s *Store) GetUsage(ctx context.Context) (*showcase.UsageCounters, error) {
	query := `
        SELECT total_chats, total_content_ideas, last_updated
        FROM usage_counters WHERE id = 1`

	var usage showcase.UsageCounters
	err := s.db.QueryRow(ctx, query).Scan(
		&usage.TotalChats, &usage.TotalContentIdeas, &usage.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &showcase.UsageCounters{}, nil
		}
		return nil, unavailable("get usage", err)
	}

	return &usage, nil
}

func (s *Store) PutUsage(ctx context.Context, usage *showcase.UsageCounters) error {
	query := `
        INSERT INTO usage_counters (id, total_chats, total_content_ideas, last_updated)
        VALUES (1, $1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET
            total_chats = EXCLUDED.total_chats,
            total_content_ideas = EXCLUDED.total_content_ideas,
            last_updated = EXCLUDED.last_updated`

	_, err := s.db.Exec(ctx, query, usage.TotalChats, usage.TotalContentIdeas, usage.LastUpdated)
	if err != nil {
		return unavailable("put usage", err)
	}

	return nil
}

// User operations

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*showcase.User, error) {
	query := `
        SELECT id, username, password_hash, role, created_at, updated_at
        FROM users WHERE username = $1`

	var user showcase.User
	err := s.db.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, showcase.ErrUserNotFound
		}
		return nil, unavailable("get user", err)
	}

	return &user, nil
}

func (s *Store) PutUser(ctx context.Context, user *showcase.User) error {
	query := `
        INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (username) DO UPDATE SET
            password_hash = EXCLUDED.password_hash,
            role = EXCLUDED.role,
            updated_at = EXCLUDED.updated_at`

	_, err := s.db.Exec(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.Role,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return unavailable("put user", err)
	}

	return nil
}
