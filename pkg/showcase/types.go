package showcase

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the domain type for content moderation states.
type SubmissionStatus string

// Submission status constants (typed).
const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// Valid reports whether s is one of the three moderation states.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// User role constants.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ContentItem represents a single showcase submission.
//
// ID and CreatedAt are immutable after creation; UpdatedAt is refreshed
// on every mutation. Status always holds one of the SubmissionStatus
// constants and defaults to pending at creation.
type ContentItem struct {
	ID           uuid.UUID        `json:"id"`
	Title        string           `json:"title"`
	Category     string           `json:"category"`
	Author       string           `json:"author"`
	URL          string           `json:"url,omitempty"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	Status       SubmissionStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// User represents an account able to log into the moderation console.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UsageCounters is the persisted singleton holding the independently
// maintained chat tallies. Submission counters are never stored here;
// they are recomputed from the item collection on every read.
type UsageCounters struct {
	TotalChats        int64     `json:"total_chats"`
	TotalContentIdeas int64     `json:"total_content_ideas"`
	LastUpdated       time.Time `json:"last_updated"`
}

// Zero reports whether the counters carry no recorded interactions.
func (u UsageCounters) Zero() bool {
	return u.TotalChats == 0 && u.TotalContentIdeas == 0
}

// Statistics is the derived aggregate reported to callers. The four
// submission counters always equal the live partition sizes of the item
// collection, so TotalApproved+TotalPending+TotalRejected ==
// TotalSubmissions at every observation point.
type Statistics struct {
	TotalChats        int64     `json:"total_chats"`
	TotalContentIdeas int64     `json:"total_content_ideas"`
	TotalApproved     int64     `json:"total_approved"`
	TotalPending      int64     `json:"total_pending"`
	TotalRejected     int64     `json:"total_rejected"`
	TotalSubmissions  int64     `json:"total_submissions"`
	LastUpdated       time.Time `json:"last_updated"`
}
