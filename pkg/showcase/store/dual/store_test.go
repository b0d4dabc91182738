package dual_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-showcase/pkg/showcase"
	"github.com/tendant/simple-showcase/pkg/showcase/store/dual"
	"github.com/tendant/simple-showcase/pkg/showcase/store/memory"
)

// trippableStore wraps a store and can be switched into an outage where
// every call fails with ErrBackendUnavailable.
type trippableStore struct {
	showcase.Store
	down bool
}

func (s *trippableStore) fail(op string) error {
	return &showcase.StoreError{
		Backend: "test",
		Op:      op,
		Err:     fmt.Errorf("%w: forced outage", showcase.ErrBackendUnavailable),
	}
}

func (s *trippableStore) ListItems(ctx context.Context, status *showcase.SubmissionStatus) ([]*showcase.ContentItem, error) {
	if s.down {
		return nil, s.fail("list items")
	}
	return s.Store.ListItems(ctx, status)
}

func (s *trippableStore) GetItem(ctx context.Context, id uuid.UUID) (*showcase.ContentItem, error) {
	if s.down {
		return nil, s.fail("get item")
	}
	return s.Store.GetItem(ctx, id)
}

func (s *trippableStore) PutItem(ctx context.Context, item *showcase.ContentItem) error {
	if s.down {
		return s.fail("put item")
	}
	return s.Store.PutItem(ctx, item)
}

func (s *trippableStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if s.down {
		return s.fail("delete item")
	}
	return s.Store.DeleteItem(ctx, id)
}

func (s *trippableStore) GetUsage(ctx context.Context) (*showcase.UsageCounters, error) {
	if s.down {
		return nil, s.fail("get usage")
	}
	return s.Store.GetUsage(ctx)
}

func (s *trippableStore) PutUsage(ctx context.Context, usage *showcase.UsageCounters) error {
	if s.down {
		return s.fail("put usage")
	}
	return s.Store.PutUsage(ctx, usage)
}

func (s *trippableStore) GetUserByUsername(ctx context.Context, username string) (*showcase.User, error) {
	if s.down {
		return nil, s.fail("get user")
	}
	return s.Store.GetUserByUsername(ctx, username)
}

func (s *trippableStore) PutUser(ctx context.Context, user *showcase.User) error {
	if s.down {
		return s.fail("put user")
	}
	return s.Store.PutUser(ctx, user)
}

func setupDual(t *testing.T) (*trippableStore, showcase.Store, showcase.Store) {
	primary := &trippableStore{Store: memory.New()}
	fallback := memory.New()

	store, err := dual.New(dual.Config{
		Primary:  primary,
		Fallback: fallback,
	})
	require.NoError(t, err)

	return primary, fallback, store
}

func testItem(title string) *showcase.ContentItem {
	now := time.Now().UTC()
	return &showcase.ContentItem{
		ID:        uuid.New(),
		Title:     title,
		Category:  "video",
		Author:    "creator",
		Status:    showcase.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNewValidation(t *testing.T) {
	_, err := dual.New(dual.Config{Fallback: memory.New()})
	assert.Error(t, err)

	_, err = dual.New(dual.Config{Primary: memory.New()})
	assert.Error(t, err)
}

func TestWritesPreferPrimary(t *testing.T) {
	primary, fallback, store := setupDual(t)
	ctx := context.Background()

	item := testItem("on primary")
	require.NoError(t, store.PutItem(ctx, item))

	got, err := primary.Store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, got.Title)

	_, err = fallback.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, showcase.ErrItemNotFound, "a healthy primary write does not touch the fallback")
}

func TestWriteFallsBackDuringOutage(t *testing.T) {
	primary, fallback, store := setupDual(t)
	ctx := context.Background()

	primary.down = true

	item := testItem("written during outage")
	require.NoError(t, store.PutItem(ctx, item))

	_, err := primary.Store.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, showcase.ErrItemNotFound, "outage writes land only on the fallback")

	got, err := fallback.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, got.Title)

	// The item stays reachable through the dual store while the outage lasts.
	got, err = store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, got.Title)
}

func TestReadFallsBackForFallbackOnlyItem(t *testing.T) {
	primary, _, store := setupDual(t)
	ctx := context.Background()

	primary.down = true
	item := testItem("fallback only")
	require.NoError(t, store.PutItem(ctx, item))
	primary.down = false

	// Primary is healthy again but never saw the item; the read still
	// finds it on the fallback.
	got, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, got.Title)
}

func TestListServesFallbackWhenPrimaryEmpty(t *testing.T) {
	primary, fallback, store := setupDual(t)
	ctx := context.Background()

	require.NoError(t, fallback.PutItem(ctx, testItem("local survivor")))

	items, err := store.ListItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "local survivor", items[0].Title)

	// Once the primary holds data, its answer wins even if it differs.
	require.NoError(t, primary.Store.PutItem(ctx, testItem("primary record")))

	items, err = store.ListItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "primary record", items[0].Title, "results are never merged across backends")
}

func TestListDuringOutage(t *testing.T) {
	primary, fallback, store := setupDual(t)
	ctx := context.Background()

	require.NoError(t, primary.Store.PutItem(ctx, testItem("primary record")))
	require.NoError(t, fallback.PutItem(ctx, testItem("fallback record")))

	primary.down = true
	items, err := store.ListItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fallback record", items[0].Title)

	primary.down = false
	items, err = store.ListItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "primary record", items[0].Title, "recovered primary is preferred again")
}

func TestGetItemNotFoundInBoth(t *testing.T) {
	_, _, store := setupDual(t)

	_, err := store.GetItem(context.Background(), uuid.New())
	assert.ErrorIs(t, err, showcase.ErrItemNotFound)
}

func TestDeleteRemovesStaleFallbackCopy(t *testing.T) {
	primary, fallback, store := setupDual(t)
	ctx := context.Background()

	item := testItem("everywhere")
	require.NoError(t, primary.Store.PutItem(ctx, item))
	require.NoError(t, fallback.PutItem(ctx, item))

	require.NoError(t, store.DeleteItem(ctx, item.ID))

	_, err := fallback.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, showcase.ErrItemNotFound, "stale fallback copy cannot resurface")
}

func TestDeleteDuringOutage(t *testing.T) {
	primary, fallback, store := setupDual(t)
	ctx := context.Background()

	item := testItem("fallback only")
	require.NoError(t, fallback.PutItem(ctx, item))

	primary.down = true
	require.NoError(t, store.DeleteItem(ctx, item.ID))

	_, err := fallback.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, showcase.ErrItemNotFound)
}

func TestUsageFallback(t *testing.T) {
	primary, fallback, store := setupDual(t)
	ctx := context.Background()

	// Zero primary counters with non-zero local data serve the local view.
	require.NoError(t, fallback.PutUsage(ctx, &showcase.UsageCounters{
		TotalChats:  4,
		LastUpdated: time.Now().UTC(),
	}))

	usage, err := store.GetUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), usage.TotalChats)

	// Non-zero primary counters win.
	require.NoError(t, primary.Store.PutUsage(ctx, &showcase.UsageCounters{
		TotalChats:  10,
		LastUpdated: time.Now().UTC(),
	}))

	usage, err = store.GetUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), usage.TotalChats)

	primary.down = true
	usage, err = store.GetUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), usage.TotalChats, "outage serves the local counters")
}

func TestUserFallback(t *testing.T) {
	primary, fallback, store := setupDual(t)
	ctx := context.Background()

	now := time.Now().UTC()
	user := &showcase.User{
		ID:        uuid.New(),
		Username:  "xion",
		Role:      showcase.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	primary.down = true
	require.NoError(t, store.PutUser(ctx, user))

	got, err := store.GetUserByUsername(ctx, "xion")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	primary.down = false
	// Healthy primary without the user still resolves via the fallback.
	got, err = store.GetUserByUsername(ctx, "xion")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = fallback.GetUserByUsername(ctx, "missing")
	assert.ErrorIs(t, err, showcase.ErrUserNotFound)
}
