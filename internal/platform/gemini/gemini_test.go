package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, text string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		*seen = body
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("plain", func(t *testing.T) {
		var seen map[string]any
		srv := newTestServer(t, ` {"tags":[],"type":"Novel"} `, &seen)
		c, err := NewClient(ctx, Config{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		out, err := c.Generate(ctx, "classify", false)
		require.NoError(t, err)
		assert.Equal(t, `{"tags":[],"type":"Novel"}`, out)
		assert.NotContains(t, seen, "tools")
	})

	t.Run("search attaches tool", func(t *testing.T) {
		var seen map[string]any
		srv := newTestServer(t, "ok", &seen)
		c, err := NewClient(ctx, Config{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.Generate(ctx, "classify", true)
		require.NoError(t, err)
		assert.Contains(t, seen, "tools")
	})

	t.Run("empty answer", func(t *testing.T) {
		var seen map[string]any
		srv := newTestServer(t, "  ", &seen)
		c, err := NewClient(ctx, Config{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.Generate(ctx, "classify", false)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)
}
