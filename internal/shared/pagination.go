package shared

import "math"

const (
	// DefaultPerPage is used when per_page is missing or invalid.
	DefaultPerPage = 10
	// MaxPerPage bounds per_page.
	MaxPerPage = 100
)

// PageRequest is a normalized page/per_page pair.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps raw values into a usable request.
func NewPageRequest(page, perPage int) PageRequest {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	// Keep Offset representable.
	if limit := math.MaxInt / perPage; page > limit {
		page = limit
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is a paginated listing as returned by index endpoints.
type Page[T any] struct {
	CurrentPage int `json:"current_page"`
	Data        []T `json:"data"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// NewPage computes pagination metadata. LastPage is at least 1.
func NewPage[T any](req PageRequest, data []T, total int) Page[T] {
	if data == nil {
		data = []T{}
	}
	lastPage := 1
	if total > 0 && req.PerPage > 0 {
		lastPage = (total + req.PerPage - 1) / req.PerPage
	}
	return Page[T]{
		CurrentPage: req.Page,
		Data:        data,
		PerPage:     req.PerPage,
		Total:       total,
		LastPage:    lastPage,
	}
}
