// Package dual composes the durable primary store and the local fallback
// cache behind the single showcase.Store contract.
//
// The policy is uniform across every operation: the primary is always
// attempted first, bounded by a timeout, and the call switches to the
// fallback only when the primary is unavailable or when a read comes
// back empty while the local side holds data. A call is served entirely
// by one backend; results from the two sides are never merged, which
// avoids deduplicating divergent records.
package dual

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-showcase/pkg/showcase"
)

// DefaultPrimaryTimeout bounds every call against the primary store. A
// timed-out primary is treated identically to an unreachable one.
const DefaultPrimaryTimeout = 3 * time.Second

// Store implements showcase.Store over a (primary, fallback) pair.
type Store struct {
	primary        showcase.Store
	fallback       showcase.Store
	primaryTimeout time.Duration
	log            *slog.Logger
}

// Config options for the dual store
type Config struct {
	Primary        showcase.Store
	Fallback       showcase.Store
	PrimaryTimeout time.Duration // Defaults to DefaultPrimaryTimeout
	Logger         *slog.Logger  // Optional; defaults to slog.Default()
}

// New creates a dual store from a primary and a fallback.
func New(config Config) (showcase.Store, error) {
	if config.Primary == nil {
		return nil, errors.New("primary store is required")
	}
	if config.Fallback == nil {
		return nil, errors.New("fallback store is required")
	}

	s := &Store{
		primary:        config.Primary,
		fallback:       config.Fallback,
		primaryTimeout: config.PrimaryTimeout,
		log:            config.Logger,
	}
	if s.primaryTimeout <= 0 {
		s.primaryTimeout = DefaultPrimaryTimeout
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	return s, nil
}

// unavailable reports whether err means the primary could not serve the
// call at all, as opposed to serving it and finding nothing.
func unavailable(err error) bool {
	return errors.Is(err, showcase.ErrBackendUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.primaryTimeout)
}

func (s *Store) switchover(op string, err error) {
	s.log.Warn("primary store unavailable, serving from fallback", "op", op, "err", err)
}

// Item operations

func (s *Store) ListItems(ctx context.Context, status *showcase.SubmissionStatus) ([]*showcase.ContentItem, error) {
	pctx, cancel := s.bound(ctx)
	items, err := s.primary.ListItems(pctx, status)
	cancel()
	if err != nil {
		if !unavailable(err) {
			return nil, err
		}
		s.switchover("list items", err)
		return s.fallback.ListItems(ctx, status)
	}

	// An empty primary answer contradicted by local data is served
	// locally: after an outage the fallback may hold records the
	// primary never saw.
	if len(items) == 0 {
		local, lerr := s.fallback.ListItems(ctx, status)
		if lerr == nil && len(local) > 0 {
			s.log.Debug("primary returned no items, serving fallback data", "count", len(local))
			return local, nil
		}
	}

	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*showcase.ContentItem, error) {
	pctx, cancel := s.bound(ctx)
	item, err := s.primary.GetItem(pctx, id)
	cancel()
	if err == nil {
		return item, nil
	}
	if unavailable(err) {
		s.switchover("get item", err)
		return s.fallback.GetItem(ctx, id)
	}
	if errors.Is(err, showcase.ErrItemNotFound) {
		// The record may live only in the fallback if it was written
		// during an outage. Not found means absent from both.
		return s.fallback.GetItem(ctx, id)
	}
	return nil, err
}

func (s *Store) PutItem(ctx context.Context, item *showcase.ContentItem) error {
	pctx, cancel := s.bound(ctx)
	err := s.primary.PutItem(pctx, item)
	cancel()
	if err == nil {
		return nil
	}
	if unavailable(err) {
		s.switchover("put item", err)
		return s.fallback.PutItem(ctx, item)
	}
	return err
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	pctx, cancel := s.bound(ctx)
	err := s.primary.DeleteItem(pctx, id)
	cancel()
	if err == nil {
		// Drop any stale fallback copy so it cannot resurface through a
		// later fallback read.
		if lerr := s.fallback.DeleteItem(ctx, id); lerr != nil && !errors.Is(lerr, showcase.ErrItemNotFound) {
			return lerr
		}
		return nil
	}
	if unavailable(err) {
		s.switchover("delete item", err)
		return s.fallback.DeleteItem(ctx, id)
	}
	if errors.Is(err, showcase.ErrItemNotFound) {
		// Not found only when absent from both backends.
		return s.fallback.DeleteItem(ctx, id)
	}
	return err
}

// Usage-counter operations

func (s *Store) GetUsage(ctx context.Context) (*showcase.UsageCounters, error) {
	pctx, cancel := s.bound(ctx)
	usage, err := s.primary.GetUsage(pctx)
	cancel()
	if err != nil {
		if !unavailable(err) {
			return nil, err
		}
		s.switchover("get usage", err)
		return s.fallback.GetUsage(ctx)
	}

	if usage.Zero() {
		local, lerr := s.fallback.GetUsage(ctx)
		if lerr == nil && !local.Zero() {
			s.log.Debug("primary usage counters empty, serving fallback data")
			return local, nil
		}
	}

	return usage, nil
}

func (s *Store) PutUsage(ctx context.Context, usage *showcase.UsageCounters) error {
	pctx, cancel := s.bound(ctx)
	err := s.primary.PutUsage(pctx, usage)
	cancel()
	if err == nil {
		return nil
	}
	if unavailable(err) {
		s.switchover("put usage", err)
		return s.fallback.PutUsage(ctx, usage)
	}
	return err
}

// User operations

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*showcase.User, error) {
	pctx, cancel := s.bound(ctx)
	user, err := s.primary.GetUserByUsername(pctx, username)
	cancel()
	if err == nil {
		return user, nil
	}
	if unavailable(err) {
		s.switchover("get user", err)
		return s.fallback.GetUserByUsername(ctx, username)
	}
	if errors.Is(err, showcase.ErrUserNotFound) {
		return s.fallback.GetUserByUsername(ctx, username)
	}
	return nil, err
}

func (s *Store) PutUser(ctx context.Context, user *showcase.User) error {
	pctx, cancel := s.bound(ctx)
	err := s.primary.PutUser(pctx, user)
	cancel()
	if err == nil {
		return nil
	}
	if unavailable(err) {
		s.switchover("put user", err)
		return s.fallback.PutUser(ctx, user)
	}
	return err
}
