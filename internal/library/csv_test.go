package library

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindlesync/internal/entity"
	"kindlesync/internal/testutil"
)

func TestCSV(t *testing.T) {
	books := []entity.Book{
		testutil.TestBook,
		{Title: "Comma, In Title", Author: "A, B"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, books))
	assert.True(t, strings.HasPrefix(buf.String(), "title,author,publisher,asin,content_tag,purchase_date,publication_date\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, books, got)
}

func TestReadCSV(t *testing.T) {
	t.Run("columns matched by name", func(t *testing.T) {
		in := "asin,extra,title\nB01,x,First\n,y,Second\n"
		got, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []entity.Book{{Title: "First", ASIN: "B01"}, {Title: "Second"}}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := ReadCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("missing title column", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("asin\nB01\n"))
		assert.Error(t, err)
	})
}

func TestTitleToASIN(t *testing.T) {
	got := TitleToASIN([]entity.Book{
		{Title: "A", ASIN: "1"},
		{Title: "B"},
		{Title: "", ASIN: "2"},
		{Title: "A", ASIN: "3"},
	})
	assert.Equal(t, map[string]string{"A": "3"}, got)
}
