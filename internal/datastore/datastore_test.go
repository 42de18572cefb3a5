package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, store.Connect(ctx))
	defer func() { _ = store.Close() }()

	require.NoError(t, store.CreateTable(ctx, `CREATE TABLE IF NOT EXISTS books (
		id TEXT, title TEXT PRIMARY KEY, latitude REAL
	)`))

	first := []map[string]any{
		{"id": "416390230", "title": "火花", "latitude": 35.68},
		{"id": "", "title": "羊と鋼の森", "latitude": nil},
	}
	require.NoError(t, store.ReplaceAll(ctx, "books", first))
	n, err := store.Count(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.ReplaceAll(ctx, "books", first[:1]))
	n, err = store.Count(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "previous export is replaced")

	var lat float64
	require.NoError(t, store.db.QueryRow("SELECT latitude FROM books WHERE title = ?", "火花").Scan(&lat))
	assert.Equal(t, 35.68, lat)
}

func TestSQLiteStoreRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, store.Connect(ctx))
	defer func() { _ = store.Close() }()

	require.Error(t, store.ReplaceAll(ctx, "books; DROP TABLE x", nil))
	require.NoError(t, store.CreateTable(ctx, "CREATE TABLE t (a TEXT)"))
	require.Error(t, store.ReplaceAll(ctx, "t", []map[string]any{{"a) VALUES (1); --": 1}}))
}

func TestDatasetteClientReplaceAll(t *testing.T) {
	type call struct {
		path string
		rows int
	}
	var (
		mu      sync.Mutex
		calls   []call
		dropped bool
	)
	recorded := func() []call {
		mu.Lock()
		defer mu.Unlock()
		out := calls
		calls = nil
		return out
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var payload struct {
			Table   string           `json:"table"`
			Rows    []map[string]any `json:"rows"`
			Confirm bool             `json:"confirm"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, call{path: r.URL.Path, rows: len(payload.Rows)})

		switch r.URL.Path {
		case "/books/books/-/drop":
			assert.True(t, payload.Confirm)
			if !dropped {
				dropped = true
				http.NotFound(w, r)
				return
			}
		case "/books/-/create":
			assert.Equal(t, "books", payload.Table)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	records := make([]map[string]any, 250)
	for i := range records {
		records[i] = map[string]any{"title": fmt.Sprintf("本%d", i)}
	}

	client := NewDatasetteClient(server.URL, "books", "secret", server.Client())
	require.NoError(t, client.Connect(context.Background()))
	require.NoError(t, client.CreateTable(context.Background(), "ignored"))
	require.NoError(t, client.ReplaceAll(context.Background(), "books", records), "a missing table is not an error")
	assert.Equal(t, []call{
		{"/books/books/-/drop", 0},
		{"/books/-/create", 100},
		{"/books/books/-/insert", 100},
		{"/books/books/-/insert", 50},
	}, recorded())

	require.NoError(t, client.ReplaceAll(context.Background(), "books", records[:1]))
	assert.Equal(t, []call{{"/books/books/-/drop", 0}, {"/books/-/create", 1}}, recorded())

	require.NoError(t, client.ReplaceAll(context.Background(), "books", nil))
	assert.Empty(t, recorded())
}

func TestDatasetteClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/books/bad/-/drop":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"ok":false,"errors":["Permission denied"]}`))
		case "/books/-/create":
			_, _ = w.Write([]byte(`{"ok":false,"errors":["bad row"]}`))
		default:
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer server.Close()

	client := NewDatasetteClient(server.URL, "books", "", server.Client())
	err := client.ReplaceAll(context.Background(), "bad", []map[string]any{{"a": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	err = client.ReplaceAll(context.Background(), "books", []map[string]any{{"a": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "datasette create failed")
	assert.Contains(t, err.Error(), "bad row")

	require.Error(t, NewDatasetteClient("::not a url", "books", "", nil).Connect(context.Background()))
}
