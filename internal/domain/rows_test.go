package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistinctNames(t *testing.T) {
	t.Parallel()

	rows := []ParsedRow{
		HoursRow{Row: 2, Name: "David Cohen"},
		HoursRow{Row: 3, Name: "  David   Cohen "},
		HoursRow{Row: 4, Name: "Dana Levi"},
		HoursRow{Row: 5, Name: ""},
		HoursRow{Row: 6, Name: "David Cohen"},
	}

	got := DistinctNames(rows)

	assert.Equal(t, []NameOccurrence{
		{Name: "David Cohen", RowNumbers: []int{2, 3, 6}},
		{Name: "Dana Levi", RowNumbers: []int{4}},
	}, got)
}

func TestMergeArticleViews(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(30), MergeArticleViews(30, 20))
	assert.Equal(t, int64(80), MergeArticleViews(30, 80))
	assert.True(t, IsLowViews(MergeArticleViews(30, 20), DefaultLowViewsThreshold))
	assert.False(t, IsLowViews(MergeArticleViews(30, 80), DefaultLowViewsThreshold))
}

func TestSource_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, SourceHours.IsValid())
	assert.True(t, SourceArticles.IsValid())
	assert.False(t, Source("payroll").IsValid())
}
