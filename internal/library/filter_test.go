package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindlesync/internal/entity"
)

func titles(books []entity.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestFilter(t *testing.T) {
	since := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []entity.Book{
		{Title: "early", PurchaseDate: "2023-02-15", ContentTag: "book"},
		{Title: "late", PurchaseDate: "2023-04-01", ContentTag: "book"},
		{Title: "boundary", PurchaseDate: "2023-03-01T00:00:00", ContentTag: "book"},
		{Title: "undated", ContentTag: "book"},
		{Title: "garbled", PurchaseDate: "someday", ContentTag: "book"},
		{Title: "sample", PurchaseDate: "2023-05-01", ContentTag: "sample_novel"},
	}

	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{
			name: "no options keeps everything",
			opts: FilterOptions{},
			want: []string{"early", "late", "boundary", "undated", "garbled", "sample"},
		},
		{
			name: "exclusion is substring match",
			opts: FilterOptions{ExcludeTags: []string{"novel"}},
			want: []string{"early", "late", "boundary", "undated", "garbled"},
		},
		{
			name: "exclusion is case sensitive",
			opts: FilterOptions{ExcludeTags: []string{"Novel"}},
			want: []string{"early", "late", "boundary", "undated", "garbled", "sample"},
		},
		{
			name: "cutoff drops earlier and undated",
			opts: FilterOptions{Since: &since},
			want: []string{"late", "boundary", "sample"},
		},
		{
			name: "both",
			opts: FilterOptions{Since: &since, ExcludeTags: []string{"novel", ""}},
			want: []string{"late", "boundary"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Filter(records, tt.opts)))
		})
	}
}

func TestFilter_OffsetDatesCompareAsInstants(t *testing.T) {
	since := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []entity.Book{
		// 2023-03-01 08:00 +09:00 is 2023-02-28 23:00 UTC.
		{Title: "tokyo", PurchaseDate: "2023-03-01T08:00:00+09:00"},
		{Title: "utc", PurchaseDate: "2023-03-01T08:00:00"},
	}
	assert.Equal(t, []string{"utc"}, titles(Filter(records, FilterOptions{Since: &since})))
}

func TestParseSince(t *testing.T) {
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("absolute", func(t *testing.T) {
		got, err := ParseSince("2023-03-01", base)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("relative", func(t *testing.T) {
		got, err := ParseSince("yesterday", base)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-14", got.Format("2006-01-02"))
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseSince("zzz", base)
		assert.Error(t, err)
		_, err = ParseSince("  ", base)
		assert.Error(t, err)
	})

	t.Run("trailing text around a relative date", func(t *testing.T) {
		_, err := ParseSince("foo 3 weeks ago bar", base)
		assert.Error(t, err)
		_, err = ParseSince("yesterday please", base)
		assert.Error(t, err)
	})
}
