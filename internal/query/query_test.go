package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"1", 1},
		{"2", 2},
		{"17", 17},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePage(tt.raw), "raw=%q", tt.raw)
	}
}

func TestResolveSearchExplicitOverridesStored(t *testing.T) {
	effective, override := ResolveSearch("batman", "superman")
	assert.Equal(t, "batman", effective)
	assert.True(t, override)
}

func TestResolveSearchFallsBackToStored(t *testing.T) {
	effective, override := ResolveSearch("", "superman")
	assert.Equal(t, "superman", effective)
	assert.False(t, override)
}

func TestResolveSearchNothingStored(t *testing.T) {
	effective, override := ResolveSearch("", "")
	assert.Equal(t, "", effective)
	assert.False(t, override)
}

func TestNewPagedResult(t *testing.T) {
	items := []string{"a", "b", "c"}

	result := NewPagedResult(items, 2, 6, 13)
	assert.Equal(t, items, result.Items)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 6, result.PageSize)
	assert.Equal(t, int64(13), result.TotalItems)
	assert.Equal(t, 3, result.TotalPages)

	exact := NewPagedResult(items, 1, 6, 12)
	assert.Equal(t, 2, exact.TotalPages)

	empty := NewPagedResult([]string(nil), 1, 6, 0)
	assert.Equal(t, 0, empty.TotalPages)
}
