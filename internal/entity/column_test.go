package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusColumnRoundTrip(t *testing.T) {
	for _, s := range Statuses {
		assert.Equal(t, s, ColumnIDToStatus(StatusToColumnID(s)), "status %q", s)
	}
	for _, c := range ColumnIDs {
		assert.Equal(t, c, StatusToColumnID(ColumnIDToStatus(c)), "column %q", c)
	}
}

func TestStatusToColumnIDMiddleState(t *testing.T) {
	assert.Equal(t, ColumnInProgress, StatusToColumnID(StatusInProgress))
	assert.Equal(t, StatusInProgress, ColumnIDToStatus(ColumnInProgress))
}

func TestMapperPanicsOnInvalidValue(t *testing.T) {
	assert.Panics(t, func() { StatusToColumnID("in-progress") })
	assert.Panics(t, func() { ColumnIDToStatus("in_progress") })
}

func TestParseStatusAndColumn(t *testing.T) {
	s, err := ParseStatus("done")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, s)

	_, err = ParseStatus("pending")
	assert.True(t, errors.Is(err, ErrInvalidTaskData))

	c, err := ParseColumnID("in-progress")
	require.NoError(t, err)
	assert.Equal(t, ColumnInProgress, c)

	_, err = ParseColumnID("in_progress")
	assert.True(t, errors.Is(err, ErrInvalidTaskData))
}

func TestNormalizeTitle(t *testing.T) {
	title, err := NormalizeTitle("  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", title)

	_, err = NormalizeTitle("   ")
	assert.ErrorIs(t, err, ErrInvalidTaskData)

	_, err = NormalizeTitle(strings.Repeat("ж", MaxTitleLength+1))
	assert.ErrorIs(t, err, ErrInvalidTaskData)

	_, err = NormalizeTitle(strings.Repeat("ж", MaxTitleLength))
	assert.NoError(t, err)
}

func TestListTasksQueryNormalize(t *testing.T) {
	q, err := ListTasksQuery{Search: " milk "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Equal(t, "milk", q.Search)
	assert.Equal(t, 0, q.Offset())

	_, err = ListTasksQuery{Page: 1, Limit: MaxPageSize + 1}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidTaskData)

	_, err = ListTasksQuery{Page: -1}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidTaskData)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(ListTasksQuery{Page: 2, Limit: 10}, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	p = NewPagination(ListTasksQuery{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}
