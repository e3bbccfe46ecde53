package helpers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ribat/admissions/internal/pkg/helpers"
)

func TestTruncate(t *testing.T) {
	local := time.FixedZone("PKT", 5*60*60)
	in := time.Date(2024, 6, 10, 15, 4, 5, 123456789, local)

	got := helpers.Truncate(in)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123456000, got.Nanosecond())
	assert.True(t, got.Equal(in.Truncate(time.Microsecond)))
}

func TestNextTimestamp(t *testing.T) {
	prev := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	t.Run("later clock is used as is", func(t *testing.T) {
		now := prev.Add(time.Second)
		assert.Equal(t, now, helpers.NextTimestamp(prev, now))
	})

	t.Run("same instant moves forward one tick", func(t *testing.T) {
		got := helpers.NextTimestamp(prev, prev)
		assert.Equal(t, prev.Add(helpers.TimestampPrecision), got)
	})

	t.Run("clock behind prev still moves forward", func(t *testing.T) {
		got := helpers.NextTimestamp(prev, prev.Add(-time.Hour))
		assert.True(t, got.After(prev))
	})

	t.Run("sub-microsecond difference counts as equal", func(t *testing.T) {
		got := helpers.NextTimestamp(prev, prev.Add(500*time.Nanosecond))
		assert.Equal(t, prev.Add(helpers.TimestampPrecision), got)
	})
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, helpers.ParseDuration("1m30s", time.Hour))
	assert.Equal(t, time.Hour, helpers.ParseDuration("soon", time.Hour))
}

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		offset     uint64
		limit      int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 5, 10, 5},
		{"zero page falls back to first", 0, 5, 0, 5},
		{"oversized page size falls back to default", 2, 1000, 10, helpers.DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := helpers.CalculateOffsetLimit(tt.page, tt.size)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestCalculateSliceIndices(t *testing.T) {
	start, end := helpers.CalculateSliceIndices(2, 3, 7)
	assert.Equal(t, 3, start)
	assert.Equal(t, 6, end)

	start, end = helpers.CalculateSliceIndices(3, 3, 7)
	assert.Equal(t, 6, start)
	assert.Equal(t, 7, end)

	start, end = helpers.CalculateSliceIndices(5, 3, 7)
	assert.Equal(t, 7, start)
	assert.Equal(t, 7, end)
}

func TestNewPaginationInfo(t *testing.T) {
	info := helpers.NewPaginationInfo(23, 2, 10)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 10, info.PageSize)
	assert.Equal(t, int64(23), info.TotalItems)

	empty := helpers.NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)
}
