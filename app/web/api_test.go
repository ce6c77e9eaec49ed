package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/nsnt/app/web/enums"
	"github.com/umputun/nsnt/app/web/mocks"
	"github.com/umputun/nsnt/app/web/persistence"
)

func TestServer_handleAPIStatus(t *testing.T) {
	server, store := newTestServer(t, Config{Version: "v1.0.0"})
	seedStore(t, store)

	rec := doRequest(t, server.routes(), http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp APIStatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Equal(t, 1, resp.SchemaVersion)
	assert.Equal(t, persistence.Counts{Cached: 3, Watched: 1, Ignored: 1, Others: 1}, resp.Counts)
	assert.NotEmpty(t, resp.Uptime)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestServer_handleAPIStatusErrors(t *testing.T) {
	errDB := errors.New("db failed")

	t.Run("counts", func(t *testing.T) {
		store := &mocks.StoreMock{
			CountsFunc: func(context.Context) (persistence.Counts, error) { return persistence.Counts{}, errDB },
		}
		server, err := New(Config{Store: store})
		require.NoError(t, err)
		rec := doRequest(t, server.routes(), http.MethodGet, "/api/v1/status", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"failed to load counts"}`, rec.Body.String())
	})

	t.Run("schema version", func(t *testing.T) {
		store := &mocks.StoreMock{
			CountsFunc:        func(context.Context) (persistence.Counts, error) { return persistence.Counts{}, nil },
			SchemaVersionFunc: func(context.Context) (int, error) { return 0, errDB },
		}
		server, err := New(Config{Store: store})
		require.NoError(t, err)
		rec := doRequest(t, server.routes(), http.MethodGet, "/api/v1/status", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestServer_handleAPISchema(t *testing.T) {
	server, _ := newTestServer(t, Config{})
	rec := doRequest(t, server.routes(), http.MethodGet, "/api/v1/schema", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var schema map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&schema))
	assert.Equal(t, "nsnt snapshot", schema["title"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "watched_items")
	assert.Contains(t, props, "ignored_items")
}

func TestServer_handleAPIList(t *testing.T) {
	server, store := newTestServer(t, Config{})
	seedStore(t, store)
	handler := server.routes()

	tests := []struct {
		name     string
		target   string
		code     int
		wantURLs []string
	}{
		{"cached", "/api/v1/items/cached",
			http.StatusOK, []string{"https://example.com/i1", "https://example.com/new", "https://example.com/w1"}},
		{"cached with limit", "/api/v1/items/cached?limit=1", http.StatusOK, []string{"https://example.com/i1"}},
		{"watched", "/api/v1/items/watched", http.StatusOK, []string{"https://example.com/w1"}},
		{"ignored", "/api/v1/items/ignored", http.StatusOK, []string{"https://example.com/i1"}},
		{"unknown partition", "/api/v1/items/others", http.StatusBadRequest, nil},
		{"bad limit", "/api/v1/items/cached?limit=abc", http.StatusBadRequest, nil},
		{"negative limit", "/api/v1/items/cached?limit=-1", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			var resp APIListResponse[persistence.Item]
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			urls := make([]string, 0, len(resp.Items))
			for _, item := range resp.Items {
				urls = append(urls, item.URL)
			}
			assert.Equal(t, tt.wantURLs, urls)
		})
	}
}

func TestServer_handleAPIWatchedAndOthers(t *testing.T) {
	server, store := newTestServer(t, Config{})
	handler := server.routes()

	t.Run("empty lists encode as arrays", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/v1/watched", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"partition":"watched","items":[]}`, rec.Body.String())

		rec = doRequest(t, handler, http.MethodGet, "/api/v1/others", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"partition":"others","items":[]}`, rec.Body.String())
	})

	// example from the import format description
	_, err := store.Import(context.Background(), persistence.ImportRequest{
		Watched: []persistence.Item{{URL: "a", Title: "A"}},
	})
	require.NoError(t, err)

	t.Run("watched merged item", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/v1/watched", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp APIListResponse[persistence.WatchedItem]
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "a", resp.Items[0].URL)
		assert.Equal(t, "A", resp.Items[0].SourceTitle)
		assert.Equal(t, "A", resp.Items[0].UserTitle)
		assert.False(t, resp.Items[0].Changed)
	})

	t.Run("others empty", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/v1/others", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"partition":"others","items":[]}`, rec.Body.String())
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/v1/watched?limit=x", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = doRequest(t, handler, http.MethodGet, "/api/v1/others?limit=x", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_apiItemAction(t *testing.T) {
	server, store := newTestServer(t, Config{})
	seedStore(t, store)
	handler := server.routes()
	ctx := context.Background()

	t.Run("watch then ignore", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/items/watch", strings.NewReader(`{"url":"https://example.com/new"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"status":"ok","url":"https://example.com/new"}`, rec.Body.String())

		rec = doRequest(t, handler, http.MethodPost, "/api/v1/items/ignore", strings.NewReader(`{"url":"https://example.com/new"}`))
		require.Equal(t, http.StatusOK, rec.Code)

		watched, err := store.List(ctx, enums.PartitionWatched, 0)
		require.NoError(t, err)
		for _, item := range watched {
			assert.NotEqual(t, "https://example.com/new", item.URL)
		}
		ignored, err := store.List(ctx, enums.PartitionIgnored, 0)
		require.NoError(t, err)
		assert.Len(t, ignored, 2)
	})

	t.Run("acknowledge", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/items/ack", strings.NewReader(`{"url":"https://example.com/w1"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/items/watch", strings.NewReader(`{"url":"nope"}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"item not found"}`, rec.Body.String())

		rec = doRequest(t, handler, http.MethodPost, "/api/v1/items/ack", strings.NewReader(`{"url":"https://example.com/new2"}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/items/watch", strings.NewReader(`{bad`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = doRequest(t, handler, http.MethodPost, "/api/v1/items/watch", strings.NewReader(`{"url":""}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_handleAPIUpdate(t *testing.T) {
	server, store := newTestServer(t, Config{})
	seedStore(t, store)
	handler := server.routes()

	rec := doRequest(t, handler, http.MethodPut, "/api/v1/items",
		strings.NewReader(`{"url":"https://example.com/w1","title":"My Title","priority":3}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	watched, err := store.ListWatched(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, watched, 1)
	assert.Equal(t, "My Title", watched[0].UserTitle)
	assert.Equal(t, "Watched One", watched[0].SourceTitle)
	require.NotNil(t, watched[0].Priority)
	assert.InDelta(t, 3.0, *watched[0].Priority, 0.001)

	rec = doRequest(t, handler, http.MethodPut, "/api/v1/items", strings.NewReader(`{"url":"https://example.com/new","title":"x"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code, "untracked item can't be updated")

	rec = doRequest(t, handler, http.MethodPut, "/api/v1/items", strings.NewReader(`{"title":"x"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, handler, http.MethodPut, "/api/v1/items", strings.NewReader(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_handleAPIImport(t *testing.T) {
	server, store := newTestServer(t, Config{})
	handler := server.routes()

	t.Run("json", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/import",
			strings.NewReader(`{"watched_items":[{"url":"a","title":"A","description":null}],"ignored_items":[]}`),
			"Content-Type", "application/json")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"cached":1,"updated":0,"watched":1,"ignored":0,"skipped":0}`, rec.Body.String())
	})

	t.Run("yaml by content type", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/import",
			strings.NewReader("ignored_items:\n  - url: b\n    title: B\n"), "Content-Type", "application/yaml")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"cached":1,"updated":0,"watched":0,"ignored":1,"skipped":0}`, rec.Body.String())
	})

	t.Run("yaml by param", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/import?format=yaml",
			strings.NewReader("watched_items:\n  - url: c\n"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("exported document imports back", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/v1/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		exported := rec.Body.String()

		rec = doRequest(t, handler, http.MethodPost, "/api/v1/import", strings.NewReader(exported))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"cached":0,"updated":0,"watched":0,"ignored":0,"skipped":3}`, rec.Body.String())
	})

	t.Run("bad format", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/import?format=xml", strings.NewReader(`{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/v1/import", strings.NewReader(`{"watched_items":`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	counts, err := store.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, persistence.Counts{Cached: 3, Watched: 2, Ignored: 1}, counts)
}

func TestServer_limitParam(t *testing.T) {
	server := &Server{}
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"limit=5", 5, false},
		{"limit=0", 0, false},
		{"limit=-3", 0, true},
		{"limit=x", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/?"+tt.query, http.NoBody)
			require.NoError(t, err)
			got, err := server.limitParam(req)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
