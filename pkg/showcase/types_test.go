package showcase_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-showcase/pkg/showcase"
)

func TestSubmissionStatusValid(t *testing.T) {
	tests := []struct {
		status showcase.SubmissionStatus
		valid  bool
	}{
		{showcase.StatusPending, true},
		{showcase.StatusApproved, true},
		{showcase.StatusRejected, true},
		{showcase.SubmissionStatus("archived"), false},
		{showcase.SubmissionStatus(""), false},
		{showcase.SubmissionStatus("Approved"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
		})
	}
}

func TestUsageCountersZero(t *testing.T) {
	var usage showcase.UsageCounters
	assert.True(t, usage.Zero())

	usage.TotalChats = 1
	assert.False(t, usage.Zero())

	usage = showcase.UsageCounters{TotalContentIdeas: 2}
	assert.False(t, usage.Zero())
}

func TestErrorUnwrapping(t *testing.T) {
	itemErr := &showcase.ItemError{
		ItemID: uuid.New(),
		Op:     "update",
		Err:    showcase.ErrItemNotFound,
	}
	assert.ErrorIs(t, itemErr, showcase.ErrItemNotFound)

	storeErr := &showcase.StoreError{
		Backend: "postgres",
		Op:      "list items",
		Err:     fmt.Errorf("%w: connection refused", showcase.ErrBackendUnavailable),
	}
	assert.ErrorIs(t, storeErr, showcase.ErrBackendUnavailable)

	var verr *showcase.ValidationError
	err := error(&showcase.ValidationError{Field: "title", Reason: "must not be empty"})
	assert.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "title")
}
