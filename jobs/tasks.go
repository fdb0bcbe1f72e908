package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/membership/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskUsersListingWarmup recomputes a users listing page into the cache.
	TaskUsersListingWarmup = "users:listing:warmup"
)

// ListingWarmupPayload selects the listing page to warm.
type ListingWarmupPayload struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// PageRequest normalises the payload into listing bounds.
func (p ListingWarmupPayload) PageRequest() shared.PageRequest {
	return shared.NewPageRequest(p.Page, p.PerPage)
}

// NewListingWarmupTask constructs an Asynq task for the listing warm-up.
func NewListingWarmupTask(page, perPage int) (*asynq.Task, error) {
	data, err := json.Marshal(ListingWarmupPayload{Page: page, PerPage: perPage})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUsersListingWarmup, data), nil
}
