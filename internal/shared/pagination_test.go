package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequestClamps(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PerPage: 10}, NewPageRequest(0, 0))
	assert.Equal(t, PageRequest{Page: 3, PerPage: 25}, NewPageRequest(3, 25))
	assert.Equal(t, PageRequest{Page: 1, PerPage: MaxPerPage}, NewPageRequest(-4, 1000))
	assert.Equal(t, 20, NewPageRequest(3, 10).Offset())
}

func TestNewPageRequestKeepsOffsetInRange(t *testing.T) {
	for _, perPage := range []int{1, 10, MaxPerPage} {
		req := NewPageRequest(math.MaxInt, perPage)
		assert.Equal(t, math.MaxInt/perPage, req.Page)
		assert.GreaterOrEqual(t, req.Offset(), 0)
	}
	req := NewPageRequest(1<<62+1, 10)
	assert.GreaterOrEqual(t, req.Offset(), 0)
	assert.Equal(t, (req.Page-1)*10, req.Offset())
}

func TestNewPageLastPage(t *testing.T) {
	req := NewPageRequest(1, 10)
	assert.Equal(t, 3, NewPage(req, []int{1}, 25).LastPage)
	assert.Equal(t, 2, NewPage(req, []int{1}, 20).LastPage)
	empty := NewPage[int](req, nil, 0)
	assert.Equal(t, 1, empty.LastPage)
	assert.NotNil(t, empty.Data)
}

func TestValidationErrorCollectsMessages(t *testing.T) {
	verr := &ValidationError{}
	assert.True(t, verr.Empty())
	verr.Add("email", "a")
	verr.Add("email", "b")
	assert.True(t, verr.Has("email"))
	assert.False(t, verr.Has("name"))
	assert.Equal(t, []string{"a", "b"}, verr.Fields["email"])
	assert.ErrorIs(t, verr, ErrValidation)
	assert.Equal(t, "status keanggotaan", Attribute("status_keanggotaan"))
}
