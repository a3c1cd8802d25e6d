package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindlesync/internal/entity"
	"kindlesync/internal/platform/notion"
)

const schemaJSON = `{"object":"database","id":"db1","title":[{"plain_text":"Library"}],"properties":{
	"Name":{"name":"Name","type":"title","title":{}},
	"Writer":{"name":"Writer","type":"rich_text","rich_text":{}},
	"ASIN":{"name":"ASIN","type":"rich_text","rich_text":{}},
	"Bought":{"name":"Bought","type":"date","date":{}},
	"Tags":{"name":"Tags","type":"multi_select","multi_select":{"options":[{"name":"SF"}]}},
	"Kind":{"name":"Kind","type":"select","select":{"options":[{"name":"Novel"}]}}}}`

var testProps = PropertyNames{
	Title:           "Name",
	Author:          "Writer",
	Publisher:       "Publisher",
	ASIN:            "ASIN",
	PurchaseDate:    "Bought",
	PublicationDate: "Published",
	Tags:            "Tags",
	Type:            "Kind",
}

type recorded struct {
	method, path string
	body         map[string]any
}

func newRepo(t *testing.T, respond func(r *http.Request) string) (*NotionRepo, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		calls = append(calls, rec)
		fmt.Fprint(w, respond(r))
	}))
	t.Cleanup(srv.Close)
	client := notion.NewClient(notion.Config{Token: "t", BaseURL: srv.URL, RPS: -1})
	return NewNotionRepo(client, "db1", testProps), &calls
}

func TestNotionRepo_CreatePage(t *testing.T) {
	repo, calls := newRepo(t, func(r *http.Request) string {
		if r.Method == http.MethodGet {
			return schemaJSON
		}
		return `{"object":"page","id":"page-1"}`
	})
	ctx := context.Background()

	id, err := repo.CreatePage(ctx, NewPage{
		Book: entity.Book{
			Title:           "Dune",
			Author:          "Frank Herbert",
			Publisher:       "Ace",
			ASIN:            "A1",
			PurchaseDate:    "2023-04-01",
			PublicationDate: "1965-08-01",
		},
		Tags:        []string{"SF"},
		Type:        "Novel",
		Description: "First line.\n\nSecond line.",
	})
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)

	require.Len(t, *calls, 2)
	create := (*calls)[1]
	assert.Equal(t, "/pages", create.path)
	props := create.body["properties"].(map[string]any)
	assert.Contains(t, props, "Name")
	assert.Contains(t, props, "Writer")
	assert.Contains(t, props, "ASIN")
	assert.Equal(t, map[string]any{"date": map[string]any{"start": "2023-04-01"}}, props["Bought"])
	assert.Equal(t, map[string]any{"select": map[string]any{"name": "Novel"}}, props["Kind"])
	assert.NotContains(t, props, "Publisher", "property missing from schema is dropped")
	assert.NotContains(t, props, "Published", "property missing from schema is dropped")
	assert.Len(t, create.body["children"], 2)

	_, err = repo.CreatePage(ctx, NewPage{Book: entity.Book{Title: "Bare"}})
	require.NoError(t, err)
	require.Len(t, *calls, 3, "schema is read once")
	bare := (*calls)[2]
	assert.Equal(t, []string{"Name"}, keys(bare.body["properties"].(map[string]any)))
	assert.NotContains(t, bare.body, "children")
}

func TestNotionRepo_QueryPages(t *testing.T) {
	repo, calls := newRepo(t, func(r *http.Request) string {
		return `{"object":"list","has_more":true,"next_cursor":"c2","results":[{"object":"page","id":"p1","properties":{
			"Name":{"type":"title","title":[{"plain_text":"Dune: "},{"plain_text":"Messiah"}]},
			"ASIN":{"type":"rich_text","rich_text":[{"plain_text":" A1 "}]},
			"Bought":{"type":"date","date":{"start":"2023-04-01"}},
			"Tags":{"type":"multi_select","multi_select":[{"name":"SF"}]},
			"Kind":{"type":"select","select":{"name":"Novel"}}}}]}`
	})

	batch, err := repo.QueryPages(context.Background(), PageQuery{MissingASIN: true, Cursor: "c1"})
	require.NoError(t, err)
	assert.True(t, batch.HasMore)
	assert.Equal(t, "c2", batch.NextCursor)
	assert.Equal(t, []Page{{
		ID:           "p1",
		Title:        "Dune: Messiah",
		ASIN:         "A1",
		PurchaseDate: "2023-04-01",
		Tags:         []string{"SF"},
		Type:         "Novel",
	}}, batch.Pages)

	body := (*calls)[0].body
	assert.Equal(t, "c1", body["start_cursor"])
	assert.Equal(t, map[string]any{"property": "ASIN", "rich_text": map[string]any{"is_empty": true}}, body["filter"])
}

func TestNotionRepo_UpdateASIN(t *testing.T) {
	repo, calls := newRepo(t, func(r *http.Request) string { return `{"object":"page","id":"p1"}` })

	require.NoError(t, repo.UpdateASIN(context.Background(), "p1", "A1"))
	call := (*calls)[0]
	assert.Equal(t, http.MethodPatch, call.method)
	assert.Equal(t, "/pages/p1", call.path)
	assert.Equal(t, []string{"ASIN"}, keys(call.body["properties"].(map[string]any)))
}

func TestNotionDate(t *testing.T) {
	d, ok := notionDate("2023-04-01 00:00:00")
	assert.True(t, ok)
	assert.Equal(t, "2023-04-01", d)

	d, ok = notionDate("2023-04-01T09:30:00+09:00")
	assert.True(t, ok)
	assert.Equal(t, "2023-04-01T00:30:00Z", d)

	_, ok = notionDate("")
	assert.False(t, ok)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
