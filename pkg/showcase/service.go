package showcase

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the showcase moderation library.
type Service interface {
	// Submission operations
	SubmitContent(ctx context.Context, req SubmitContentRequest) (*ContentItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ContentItem, error)
	ListByStatus(ctx context.Context, status *SubmissionStatus) ([]*ContentItem, error)
	UpdateItem(ctx context.Context, req UpdateItemRequest) (*ContentItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// Moderation workflow
	UpdateStatus(ctx context.Context, id uuid.UUID, status SubmissionStatus) (*ContentItem, error)
	Approve(ctx context.Context, id uuid.UUID) (*ContentItem, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*ContentItem, error)

	// Statistics
	CurrentStatistics(ctx context.Context) (*Statistics, error)
	RecordChatInteraction(ctx context.Context, message string) error

	// Accounts
	EnsureBootstrapAdmin(ctx context.Context) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
