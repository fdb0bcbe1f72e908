package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/membership/internal/jobs"
	"github.com/odyssey-erp/membership/internal/shared"
	"github.com/odyssey-erp/membership/internal/users"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ListingWarmer loads a listing page through the cache-aside path.
type ListingWarmer interface {
	Warm(ctx context.Context, req shared.PageRequest) (shared.Page[users.User], error)
}

// ListingWarmupJob fills the users listing cache ahead of requests.
type ListingWarmupJob struct {
	Warmer  ListingWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewListingWarmupJob wires dependencies for the warm-up handler.
func NewListingWarmupJob(warmer ListingWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ListingWarmupJob {
	return &ListingWarmupJob{Warmer: warmer, Logger: logger, Metrics: metrics}
}

// Handle processes TaskUsersListingWarmup tasks.
func (j *ListingWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Warmer == nil {
		return errors.New("listing warmup: handler not configured")
	}
	var payload ListingWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("listing warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	req := payload.PageRequest()

	tracker := j.metrics().Track(TaskUsersListingWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("page", req.Page), slog.Int("per_page", req.PerPage))
	page, err := j.Warmer.Warm(ctx, req)
	if err != nil {
		logger.Error("warm listing page", slog.Any("error", err))
		return err
	}
	j.metrics().AddWarmedPages(1)
	logger.Info("warmed listing page", slog.Int("total", page.Total), slog.Int("last_page", page.LastPage))
	return nil
}

func (j *ListingWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskUsersListingWarmup))
	}
	return slog.Default().With(slog.String("job", TaskUsersListingWarmup))
}

func (j *ListingWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
