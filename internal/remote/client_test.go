package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
}

func TestFetchAll(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/widgets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"w1","name":"one"},{"id":"w2","name":"two"}]`))
	}))

	items, err := FetchAll[widget](context.Background(), client, "widgets")
	require.NoError(t, err)
	require.Equal(t, []widget{{ID: "w1", Name: "one"}, {ID: "w2", Name: "two"}}, items)
}

func TestFetchAllNullBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`null`))
	}))

	items, err := FetchAll[widget](context.Background(), client, "widgets")
	require.NoError(t, err)
	require.Nil(t, items)
}

func TestFetchAllNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	items, err := FetchAll[widget](context.Background(), client, "widgets")
	require.NoError(t, err)
	require.Nil(t, items)
}

func TestFetchAllServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := FetchAll[widget](context.Background(), client, "widgets")
	require.Error(t, err)
}

func TestPushOne(t *testing.T) {
	var got widget
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/widgets", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	require.NoError(t, client.PushOne(context.Background(), "widgets", widget{ID: "w1", Name: "one"}))
	require.Equal(t, widget{ID: "w1", Name: "one"}, got)
}

func TestPushRaw(t *testing.T) {
	var got widget
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))

	raw := json.RawMessage(`{"id":"w9","name":"raw"}`)
	require.NoError(t, client.PushRaw(context.Background(), "widgets", raw))
	require.Equal(t, "w9", got.ID)
}

func TestDeleteOne(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/widgets/w1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteOne(context.Background(), "widgets", "w1"))
}

func TestDeleteOneAlreadyGone(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	require.NoError(t, client.DeleteOne(context.Background(), "widgets", "w1"))
}
