package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestNormalize(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PageSize: DefaultPageSize}, PageRequest{}.Normalize())
	assert.Equal(t, PageRequest{Page: 3, PageSize: 50}, PageRequest{Page: 3, PageSize: 50}.Normalize())
	assert.Equal(t, PageRequest{Page: 1, PageSize: DefaultPageSize}, PageRequest{Page: -2, PageSize: 500}.Normalize())
	assert.Equal(t, 40, PageRequest{Page: 3, PageSize: 20}.Offset())
}

func TestPageRequestNormalizeCapsHugePage(t *testing.T) {
	req := PageRequest{Page: 461168601842738792, PageSize: 20}.Normalize()

	assert.Equal(t, MaxPage, req.Page)
	assert.Equal(t, (MaxPage-1)*20, req.Offset())
	assert.Positive(t, req.Offset())
}

func TestNewOffsetPage(t *testing.T) {
	page := newOffsetPage([]int{1, 2}, 5, PageRequest{Page: 1, PageSize: 2})
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []int{1, 2}, page.Items)

	empty := newOffsetPage[int](nil, 0, PageRequest{Page: 1, PageSize: 20})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestCursorRoundTrip(t *testing.T) {
	want := OrderCursor{
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ID:        uuid.New(),
	}

	got, err := DecodeCursor(EncodeCursor(want))
	require.NoError(t, err)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.ID, got.ID)
}

func TestDecodeCursorEmptyStartsAfterEverything(t *testing.T) {
	got, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.After(time.Now()))
	assert.Equal(t, uuid.Max, got.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor(EncodeCursor(OrderCursor{})[:4])
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
