package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2023-02-15", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC), true},
		{"2023-02-15T10:20:30Z", time.Date(2023, 2, 15, 10, 20, 30, 0, time.UTC), true},
		{"2019-03-30T10:15:59+0900", time.Date(2019, 3, 30, 1, 15, 59, 0, time.UTC), true},
		{"2023-02-15 10:20:30", time.Date(2023, 2, 15, 10, 20, 30, 0, time.UTC), true},
		{"2023/02/15", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC), true},
		{" 2023-02-15 ", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"last tuesday", time.Time{}, false},
		{"2023-13-45", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2019-03-30", FormatDate("2019-03-30T10:15:59+0000"))
	assert.Equal(t, "", FormatDate("unknown"))
}

func TestBookKey(t *testing.T) {
	assert.Equal(t, "B012345", Book{Title: "X", ASIN: "B012345"}.Key())
	assert.Equal(t, "X", Book{Title: "X"}.Key())
}
