package showcase

import "github.com/google/uuid"

// Request DTOs

// SubmitContentRequest contains parameters for a new showcase submission.
// ThumbnailURL is resolved by the upload handler before submission; when
// empty the service stores the inline placeholder instead.
type SubmitContentRequest struct {
	Title        string
	Category     string
	Author       string
	URL          string
	ThumbnailURL string
}

// UpdateItemRequest contains parameters for an admin edit of an existing
// item. Empty fields keep their current value.
type UpdateItemRequest struct {
	ID           uuid.UUID
	Title        string
	Category     string
	Author       string
	URL          string
	ThumbnailURL string
}
