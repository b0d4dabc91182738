package showcase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Store is the uniform adapter over a backend holding the showcase
// collections: content items, the usage-counter singleton, and users.
//
// Implementations over a remote backend must fold every transport or
// query failure into ErrBackendUnavailable (wrapped is fine); only a
// successful call that finds no record may return ErrItemNotFound or
// ErrUserNotFound. PutItem and PutUser are full-record upserts: a write
// either fully replaces the prior record for that id or fails entirely.
type Store interface {
	// Item operations
	ListItems(ctx context.Context, status *SubmissionStatus) ([]*ContentItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ContentItem, error)
	PutItem(ctx context.Context, item *ContentItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// Usage-counter singleton operations. GetUsage returns zero counters,
	// not an error, when nothing has been recorded yet.
	GetUsage(ctx context.Context) (*UsageCounters, error)
	PutUsage(ctx context.Context, usage *UsageCounters) error

	// User operations
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	PutUser(ctx context.Context, user *User) error
}

// BlobStore is the interface for thumbnail storage backends.
type BlobStore interface {
	// Upload stores the content under objectKey, replacing any prior blob.
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download opens the blob stored under objectKey.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the blob stored under objectKey.
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves size and content-type metadata for a blob.
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// ObjectMeta describes a stored blob.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
}
