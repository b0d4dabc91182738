package showcase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-showcase/pkg/showcase"
	"github.com/tendant/simple-showcase/pkg/showcase/store/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []showcase.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []showcase.Option{},
			expectError: true,
		},
		{
			name: "with store should succeed",
			options: []showcase.Option{
				showcase.WithStore(memory.New()),
			},
			expectError: false,
		},
		{
			name: "with store and bootstrap admin should succeed",
			options: []showcase.Option{
				showcase.WithStore(memory.New()),
				showcase.WithBootstrapAdmin("xion", "secret"),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := showcase.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func setupTestService(t *testing.T) showcase.Service {
	svc, err := showcase.New(
		showcase.WithStore(memory.New()),
		showcase.WithBootstrapAdmin("xion", "test-password"),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc
}

func submitTestItem(t *testing.T, svc showcase.Service, title string) *showcase.ContentItem {
	item, err := svc.SubmitContent(context.Background(), showcase.SubmitContentRequest{
		Title:    title,
		Category: "video",
		Author:   "creator",
		URL:      "https://example.com/" + title,
	})
	require.NoError(t, err)
	return item
}

func TestSubmitContent(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	item, err := svc.SubmitContent(ctx, showcase.SubmitContentRequest{
		Title:    "How I grew my channel",
		Category: "video",
		Author:   "alex",
		URL:      "https://example.com/video",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, showcase.StatusPending, item.Status, "new submissions start pending")
	assert.Equal(t, showcase.PlaceholderThumbnailURL, item.ThumbnailURL, "missing thumbnail gets the placeholder")
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, got.Title)
}

func TestSubmitContentKeepsProvidedThumbnail(t *testing.T) {
	svc := setupTestService(t)

	item, err := svc.SubmitContent(context.Background(), showcase.SubmitContentRequest{
		Title:        "With thumbnail",
		Category:     "post",
		Author:       "alex",
		URL:          "https://example.com",
		ThumbnailURL: "/uploads/abc.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", item.ThumbnailURL)
}

func TestSubmitContentValidation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   showcase.SubmitContentRequest
		field string
	}{
		{
			name:  "missing title",
			req:   showcase.SubmitContentRequest{Category: "video", Author: "a"},
			field: "title",
		},
		{
			name:  "missing category",
			req:   showcase.SubmitContentRequest{Title: "t", Author: "a"},
			field: "category",
		},
		{
			name:  "missing author",
			req:   showcase.SubmitContentRequest{Title: "t", Category: "video"},
			field: "author",
		},
		{
			name:  "whitespace only title",
			req:   showcase.SubmitContentRequest{Title: "   ", Category: "video", Author: "a"},
			field: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitContent(ctx, tt.req)
			require.Error(t, err)

			var verr *showcase.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestModerationWorkflow(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	first := submitTestItem(t, svc, "first")
	second := submitTestItem(t, svc, "second")
	third := submitTestItem(t, svc, "third")

	approved, err := svc.Approve(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, showcase.StatusApproved, approved.Status)

	rejected, err := svc.Reject(ctx, second.ID, "off topic")
	require.NoError(t, err)
	assert.Equal(t, showcase.StatusRejected, rejected.Status)

	stats, err := svc.CurrentStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalApproved)
	assert.Equal(t, int64(1), stats.TotalRejected)
	assert.Equal(t, int64(1), stats.TotalPending)
	assert.Equal(t, int64(3), stats.TotalSubmissions)

	// The pending item is untouched by the other transitions.
	got, err := svc.GetItem(ctx, third.ID)
	require.NoError(t, err)
	assert.Equal(t, showcase.StatusPending, got.Status)
}

func TestUpdateStatusIdempotent(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	item := submitTestItem(t, svc, "item")

	once, err := svc.Approve(ctx, item.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	twice, err := svc.Approve(ctx, item.ID)
	require.NoError(t, err)

	assert.Equal(t, showcase.StatusApproved, twice.Status)
	assert.True(t, twice.UpdatedAt.After(once.UpdatedAt), "re-applying a status still advances UpdatedAt")

	stats, err := svc.CurrentStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalApproved, "idempotent transition does not double count")
}

func TestUpdateStatusInvalid(t *testing.T) {
	svc := setupTestService(t)
	item := submitTestItem(t, svc, "item")

	_, err := svc.UpdateStatus(context.Background(), item.ID, showcase.SubmissionStatus("archived"))
	assert.ErrorIs(t, err, showcase.ErrInvalidStatus)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), showcase.StatusApproved)
	assert.ErrorIs(t, err, showcase.ErrItemNotFound)
}

func TestUpdateItemPartial(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	item := submitTestItem(t, svc, "original title")

	updated, err := svc.UpdateItem(ctx, showcase.UpdateItemRequest{
		ID:    item.ID,
		Title: "new title",
	})
	require.NoError(t, err)

	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, item.Category, updated.Category, "empty fields keep their current value")
	assert.Equal(t, item.Author, updated.Author)
	assert.Equal(t, item.Status, updated.Status)
	assert.True(t, updated.UpdatedAt.After(item.UpdatedAt) || updated.UpdatedAt.Equal(item.UpdatedAt))
}

func TestDeleteItem(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	item := submitTestItem(t, svc, "doomed")
	rejectedItem, err := svc.Reject(ctx, item.ID, "")
	require.NoError(t, err)
	assert.Equal(t, showcase.StatusRejected, rejectedItem.Status)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))

	_, err = svc.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, showcase.ErrItemNotFound)

	stats, err := svc.CurrentStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalRejected, "deleted items leave the statistics")
	assert.Equal(t, int64(0), stats.TotalSubmissions)

	assert.ErrorIs(t, svc.DeleteItem(ctx, item.ID), showcase.ErrItemNotFound)
}

func TestListByStatus(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	a := submitTestItem(t, svc, "a")
	submitTestItem(t, svc, "b")
	_, err := svc.Approve(ctx, a.ID)
	require.NoError(t, err)

	approved := showcase.StatusApproved
	items, err := svc.ListByStatus(ctx, &approved)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	all, err := svc.ListByStatus(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bogus := showcase.SubmissionStatus("archived")
	_, err = svc.ListByStatus(ctx, &bogus)
	assert.ErrorIs(t, err, showcase.ErrInvalidStatus)
}

func TestStatisticsPartition(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	items := make([]*showcase.ContentItem, 0, 6)
	for i := 0; i < 6; i++ {
		items = append(items, submitTestItem(t, svc, string(rune('a'+i))))
	}

	for _, it := range items[:3] {
		_, err := svc.Approve(ctx, it.ID)
		require.NoError(t, err)
	}
	for _, it := range items[3:5] {
		_, err := svc.Reject(ctx, it.ID, "")
		require.NoError(t, err)
	}

	stats, err := svc.CurrentStatistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, stats.TotalSubmissions,
		stats.TotalApproved+stats.TotalPending+stats.TotalRejected,
		"every item lands in exactly one status bucket")
	assert.Equal(t, int64(3), stats.TotalApproved)
	assert.Equal(t, int64(2), stats.TotalRejected)
	assert.Equal(t, int64(1), stats.TotalPending)
}

func TestRecordChatInteraction(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		message string
		isIdea  bool
	}{
		{"give me a video idea", true},
		{"help me CREATE a tutorial", true},
		{"what should I post on my blog", true},
		{"hello there", false},
		{"what's the weather", false},
	}

	wantIdeas := int64(0)
	for _, tt := range tests {
		require.NoError(t, svc.RecordChatInteraction(ctx, tt.message))
		if tt.isIdea {
			wantIdeas++
		}
	}

	stats, err := svc.CurrentStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(tests)), stats.TotalChats)
	assert.Equal(t, wantIdeas, stats.TotalContentIdeas)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	admin, err := svc.EnsureBootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "xion", admin.Username)
	assert.Equal(t, showcase.RoleAdmin, admin.Role)
	assert.NotEmpty(t, admin.PasswordHash)
	assert.NotEqual(t, "test-password", admin.PasswordHash, "password is stored hashed")

	// Second call finds the existing account instead of recreating it.
	again, err := svc.EnsureBootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}

func TestEnsureBootstrapAdminRequiresPassword(t *testing.T) {
	svc, err := showcase.New(showcase.WithStore(memory.New()))
	require.NoError(t, err)

	_, err = svc.EnsureBootstrapAdmin(context.Background())
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureBootstrapAdmin(ctx)
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "xion", "test-password")
	require.NoError(t, err)
	assert.Equal(t, "xion", user.Username)

	_, err = svc.Authenticate(ctx, "xion", "wrong")
	assert.ErrorIs(t, err, showcase.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "test-password")
	assert.ErrorIs(t, err, showcase.ErrInvalidCredentials)
}
