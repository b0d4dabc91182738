package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-showcase/pkg/showcase"
)

// Store implements showcase.Store using in-memory storage
type Store struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*showcase.ContentItem
	users map[string]*showcase.User
	usage showcase.UsageCounters
}

// New creates a new in-memory store
func New() showcase.Store {
	return &Store{
		items: make(map[uuid.UUID]*showcase.ContentItem),
		users: make(map[string]*showcase.User),
	}
}

// Item operations

func (s *Store) ListItems(ctx context.Context, status *showcase.SubmissionStatus) ([]*showcase.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*showcase.ContentItem, 0, len(s.items))
	for _, item := range s.items {
		if status != nil && item.Status != *status {
			continue
		}
		itemCopy := *item
		result = append(result, &itemCopy)
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*showcase.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, showcase.ErrItemNotFound
	}

	// Return a copy to prevent external modifications
	itemCopy := *item
	return &itemCopy, nil
}

func (s *Store) PutItem(ctx context.Context, item *showcase.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to avoid external modifications
	itemCopy := *item
	s.items[item.ID] = &itemCopy

	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return showcase.ErrItemNotFound
	}
	delete(s.items, id)

	return nil
}

// Usage-counter operations

func (s *Store) GetUsage(ctx context.Context) (*showcase.UsageCounters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usage := s.usage
	return &usage, nil
}

func (s *Store) PutUsage(ctx context.Context, usage *showcase.UsageCounters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usage = *usage
	return nil
}

// User operations

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*showcase.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[username]
	if !exists {
		return nil, showcase.ErrUserNotFound
	}

	userCopy := *user
	return &userCopy, nil
}

func (s *Store) PutUser(ctx context.Context, user *showcase.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userCopy := *user
	s.users[user.Username] = &userCopy

	return nil
}
