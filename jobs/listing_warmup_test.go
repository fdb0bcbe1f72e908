package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/membership/internal/jobs"
	"github.com/odyssey-erp/membership/internal/shared"
	"github.com/odyssey-erp/membership/internal/users"
)

type stubWarmer struct {
	calls []shared.PageRequest
	err   error
}

func (s *stubWarmer) Warm(_ context.Context, req shared.PageRequest) (shared.Page[users.User], error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return shared.Page[users.User]{}, s.err
	}
	return shared.NewPage(req, []users.User{{ID: 1}}, 1), nil
}

func newTestJob(warmer ListingWarmer) *ListingWarmupJob {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewListingWarmupJob(warmer, logger, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestNewListingWarmupTaskPayload(t *testing.T) {
	task, err := NewListingWarmupTask(2, 25)
	require.NoError(t, err)
	assert.Equal(t, TaskUsersListingWarmup, task.Type())

	var payload map[string]int
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, map[string]int{"page": 2, "per_page": 25}, payload)
}

func TestListingWarmupHandleNormalisesBounds(t *testing.T) {
	warmer := &stubWarmer{}
	task, err := NewListingWarmupTask(0, 500)
	require.NoError(t, err)

	require.NoError(t, newTestJob(warmer).Handle(context.Background(), task))
	require.Len(t, warmer.calls, 1)
	assert.Equal(t, shared.PageRequest{Page: 1, PerPage: shared.MaxPerPage}, warmer.calls[0])
}

func TestListingWarmupHandleSkipsRetryOnBadPayload(t *testing.T) {
	warmer := &stubWarmer{}
	err := newTestJob(warmer).Handle(context.Background(), asynq.NewTask(TaskUsersListingWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, warmer.calls)
}

func TestListingWarmupHandlePropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	task, err := NewListingWarmupTask(1, 10)
	require.NoError(t, err)

	err = newTestJob(&stubWarmer{err: boom}).Handle(context.Background(), task)
	assert.ErrorIs(t, err, boom)
}

func TestListingWarmupHandleRequiresWarmer(t *testing.T) {
	task, err := NewListingWarmupTask(1, 10)
	require.NoError(t, err)
	assert.Error(t, (&ListingWarmupJob{}).Handle(context.Background(), task))
}
