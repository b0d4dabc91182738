package showcase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PlaceholderThumbnailURL is stored on submissions that arrive without a
// thumbnail. Inline data URI so the gallery renders without a round trip.
const PlaceholderThumbnailURL = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMzAwIiBoZWlnaHQ9IjIwMCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMTAwJSIgaGVpZ2h0PSIxMDAlIiBmaWxsPSIjNmI3MjgwIi8+PHRleHQgeD0iNTAlIiB5PSI1MCUiIGZvbnQtZmFtaWx5PSJBcmlhbCwgc2Fucy1zZXJpZiIgZm9udC1zaXplPSIxNCIgZmlsbD0iI2ZmZmZmZiIgdGV4dC1hbmNob3I9Im1pZGRsZSIgZHk9Ii4zZW0iPk5vIEltYWdlPC90ZXh0Pjwvc3ZnPg=="

// contentIdeaKeywords marks a chat message as a content-idea interaction
// when any of them appears as a case-insensitive substring.
var contentIdeaKeywords = []string{
	"content", "create", "idea", "video", "tutorial",
	"thread", "post", "article", "blog",
}

// service implements the Service interface
type service struct {
	store Store
	log   *slog.Logger

	bootstrapUsername string
	bootstrapPassword string

	// usageMu serializes the read-modify-write of the usage-counter
	// singleton across concurrent chat interactions.
	usageMu sync.Mutex
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithStore sets the backing store for the service
func WithStore(store Store) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithLogger sets the structured logger for the service
func WithLogger(log *slog.Logger) Option {
	return func(s *service) {
		s.log = log
	}
}

// WithBootstrapAdmin sets the privileged account created lazily by
// EnsureBootstrapAdmin when no such user exists yet.
func WithBootstrapAdmin(username, password string) Option {
	return func(s *service) {
		s.bootstrapUsername = username
		s.bootstrapPassword = password
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		bootstrapUsername: "xion",
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	return s, nil
}

// Submission operations

func (s *service) SubmitContent(ctx context.Context, req SubmitContentRequest) (*ContentItem, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &ContentItem{
		ID:           uuid.New(),
		Title:        req.Title,
		Category:     req.Category,
		Author:       req.Author,
		URL:          req.URL,
		ThumbnailURL: req.ThumbnailURL,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.ThumbnailURL == "" {
		item.ThumbnailURL = PlaceholderThumbnailURL
	}

	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, &ItemError{ItemID: item.ID, Op: "submit", Err: err}
	}

	s.refreshStatistics(ctx)
	return item, nil
}

func validateSubmission(req SubmitContentRequest) error {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	case strings.TrimSpace(req.Category) == "":
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	case strings.TrimSpace(req.Author) == "":
		return &ValidationError{Field: "author", Reason: "must not be empty"}
	}
	return nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ContentItem, error) {
	return s.store.GetItem(ctx, id)
}

func (s *service) ListByStatus(ctx context.Context, status *SubmissionStatus) ([]*ContentItem, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *status)
	}
	return s.store.ListItems(ctx, status)
}

func (s *service) UpdateItem(ctx context.Context, req UpdateItemRequest) (*ContentItem, error) {
	item, err := s.store.GetItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		item.Title = req.Title
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Author != "" {
		item.Author = req.Author
	}
	if req.URL != "" {
		item.URL = req.URL
	}
	if req.ThumbnailURL != "" {
		item.ThumbnailURL = req.ThumbnailURL
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, &ItemError{ItemID: item.ID, Op: "update", Err: err}
	}

	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return err
		}
		return &ItemError{ItemID: id, Op: "delete", Err: err}
	}

	s.refreshStatistics(ctx)
	return nil
}

// Moderation workflow

// UpdateStatus moves an item to the given state. Transitions are
// administrator-triggered and idempotent: re-applying the current state
// succeeds and only advances UpdatedAt. Two concurrent calls race with
// last-writer-wins semantics on Status and UpdatedAt.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status SubmissionStatus) (*ContentItem, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Status = status
	item.UpdatedAt = time.Now().UTC()

	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, &ItemError{ItemID: id, Op: "update_status", Err: err}
	}

	s.refreshStatistics(ctx)
	return item, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*ContentItem, error) {
	return s.UpdateStatus(ctx, id, StatusApproved)
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, reason string) (*ContentItem, error) {
	if reason != "" {
		s.log.Info("content rejected", "id", id, "reason", reason)
	}
	return s.UpdateStatus(ctx, id, StatusRejected)
}

// Statistics

// CurrentStatistics recomputes the submission counters from the live item
// collection and merges in the persisted chat tallies. No code path
// reports submission counters without going through this recomputation.
func (s *service) CurrentStatistics(ctx context.Context) (*Statistics, error) {
	items, err := s.store.ListItems(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list items for statistics: %w", err)
	}

	usage, err := s.store.GetUsage(ctx)
	if err != nil {
		return nil, fmt.Errorf("load usage counters: %w", err)
	}

	stats := &Statistics{
		TotalChats:        usage.TotalChats,
		TotalContentIdeas: usage.TotalContentIdeas,
		TotalSubmissions:  int64(len(items)),
		LastUpdated:       time.Now().UTC(),
	}
	for _, item := range items {
		switch item.Status {
		case StatusApproved:
			stats.TotalApproved++
		case StatusRejected:
			stats.TotalRejected++
		default:
			stats.TotalPending++
		}
	}

	return stats, nil
}

func (s *service) RecordChatInteraction(ctx context.Context, message string) error {
	s.usageMu.Lock()
	defer s.usageMu.Unlock()

	usage, err := s.store.GetUsage(ctx)
	if err != nil {
		return fmt.Errorf("load usage counters: %w", err)
	}

	usage.TotalChats++
	if isContentIdea(message) {
		usage.TotalContentIdeas++
	}
	usage.LastUpdated = time.Now().UTC()

	if err := s.store.PutUsage(ctx, usage); err != nil {
		return fmt.Errorf("save usage counters: %w", err)
	}

	return nil
}

func isContentIdea(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range contentIdeaKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// refreshStatistics recomputes the derived counters after a mutation so
// the reconciled view is kept warm and logged. Failures are non-fatal:
// the counters are recomputed again on every read anyway.
func (s *service) refreshStatistics(ctx context.Context) {
	stats, err := s.CurrentStatistics(ctx)
	if err != nil {
		s.log.Warn("statistics refresh failed", "err", err)
		return
	}
	s.log.Debug("statistics refreshed",
		"total_submissions", stats.TotalSubmissions,
		"pending", stats.TotalPending,
		"approved", stats.TotalApproved,
		"rejected", stats.TotalRejected)
}

// Accounts

func (s *service) EnsureBootstrapAdmin(ctx context.Context) (*User, error) {
	user, err := s.store.GetUserByUsername(ctx, s.bootstrapUsername)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("look up bootstrap admin: %w", err)
	}

	if s.bootstrapPassword == "" {
		return nil, fmt.Errorf("bootstrap admin %q missing and no bootstrap password configured", s.bootstrapUsername)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.bootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash bootstrap password: %w", err)
	}

	now := time.Now().UTC()
	user = &User{
		ID:           uuid.New(),
		Username:     s.bootstrapUsername,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create bootstrap admin: %w", err)
	}

	s.log.Info("bootstrap admin created", "username", user.Username)
	return user, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
