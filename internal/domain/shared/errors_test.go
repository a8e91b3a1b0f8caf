package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Withf(t *testing.T) {
	err := ErrInvalidState.Withf("Order %s can no longer be cancelled", "CMD-1")

	assert.Equal(t, "Order CMD-1 can no longer be cancelled", err.Error())
	assert.Equal(t, "INVALID_STATE", err.Code)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Operation not allowed in current state", ErrInvalidState.Message)
}

func TestDomainError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load order: %w", ErrNotFound)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrLocked))
	assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
}

func TestFilter_Offset(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		paged  bool
		offset int
	}{
		{"unpaged", Filter{}, false, 0},
		{"first page", Filter{Page: 1, PageSize: 20}, true, 0},
		{"third page", Filter{Page: 3, PageSize: 20}, true, 40},
		{"page without size", Filter{Page: 2}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.paged, tt.filter.Paged())
			assert.Equal(t, tt.offset, tt.filter.Offset())
		})
	}
}
