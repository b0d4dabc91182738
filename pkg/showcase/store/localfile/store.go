// Package localfile implements the file-backed fallback side of the
// dual-backend store. Collections live as JSON documents under a base
// directory, are loaded into memory at startup, and are flushed to disk
// synchronously after every mutation. The in-memory state stays
// authoritative for the process lifetime even when a flush fails.
package localfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-showcase/pkg/showcase"
)

const (
	itemsFile = "content-items.json"
	usageFile = "usage-counters.json"
	usersFile = "users.json"
)

// Store implements showcase.Store over JSON documents on local disk.
type Store struct {
	mu      sync.RWMutex
	baseDir string
	log     *slog.Logger

	items map[uuid.UUID]*showcase.ContentItem
	users map[string]*showcase.User
	usage showcase.UsageCounters
}

// Config options for the local file store
type Config struct {
	BaseDir string       // Directory holding the collection documents
	Logger  *slog.Logger // Optional; defaults to slog.Default()
}

// New creates a local file store, loading any existing collection
// documents. Absent or corrupt documents start the collection empty;
// corruption is logged as a warning and never fails construction.
func New(config Config) (showcase.Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	s := &Store{
		baseDir: config.BaseDir,
		log:     config.Logger,
		items:   make(map[uuid.UUID]*showcase.ContentItem),
		users:   make(map[string]*showcase.User),
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	s.loadAll()
	return s, nil
}

func (s *Store) loadAll() {
	var items []*showcase.ContentItem
	if s.loadDocument(itemsFile, &items) {
		for _, item := range items {
			s.items[item.ID] = item
		}
	}

	var users []*showcase.User
	if s.loadDocument(usersFile, &users) {
		for _, user := range users {
			s.users[user.Username] = user
		}
	}

	s.loadDocument(usageFile, &s.usage)
}

// loadDocument fails soft: a missing file is normal on first run and an
// unreadable one must not crash the process, only reset the collection.
func (s *Store) loadDocument(name string, v interface{}) bool {
	path := filepath.Join(s.baseDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("fallback cache unreadable, starting empty", "file", path, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("fallback cache corrupt, starting empty", "file", path, "err", err)
		return false
	}
	return true
}

// saveDocument flushes one collection document. The write goes through a
// temp file and rename so a crash mid-flush never leaves a partial
// document. Failure is logged and treated as transient: the in-memory
// state remains authoritative.
func (s *Store) saveDocument(name string, v interface{}) {
	path := filepath.Join(s.baseDir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Warn("fallback cache flush failed", "file", path, "err", err)
		return
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Warn("fallback cache flush failed", "file", path, "err", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.log.Warn("fallback cache flush failed", "file", path, "err", err)
	}
}

func (s *Store) saveItems() {
	items := make([]*showcase.ContentItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	s.saveDocument(itemsFile, items)
}

func (s *Store) saveUsers() {
	users := make([]*showcase.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	s.saveDocument(usersFile, users)
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

	itemCopy := *item
	return &itemCopy, nil
}

func (s *Store) PutItem(ctx context.Context, item *showcase.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemCopy := *item
	s.items[item.ID] = &itemCopy
	s.saveItems()

	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return showcase.ErrItemNotFound
	}
	delete(s.items, id)
	s.saveItems()

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
	s.saveDocument(usageFile, &s.usage)

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
	s.saveUsers()

	return nil
}
