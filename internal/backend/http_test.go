package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/boardsync/internal/core/action"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

func newTestClient(t *testing.T, status int, response any) (*HTTPClient, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)

	client := NewHTTPClient(srv.URL, HTTPOptions{Token: "secret"}, zerolog.Nop())
	return client, rec
}

func TestHTTPClient_ListGlobalItems(t *testing.T) {
	ctx := context.Background()
	client, rec := newTestClient(t, http.StatusOK, []action.Raw{
		{ID: "1", Task: "a", Status: "in_progress"},
	})

	items, err := client.ListGlobalItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "in_progress", items[0].Status)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/action-items", rec.path)
	assert.Equal(t, "Bearer secret", rec.auth)
}

func TestHTTPClient_ListProjectItems(t *testing.T) {
	ctx := context.Background()
	client, rec := newTestClient(t, http.StatusOK, []action.Raw{})

	_, err := client.ListProjectItems(ctx, "42", ListOptions{Owner: "Alice Smith"})
	require.NoError(t, err)

	assert.Equal(t, "/api/projects/42/action-items", rec.path)
	assert.Equal(t, "owner=Alice+Smith", rec.query)
}

func TestHTTPClient_CreateProjectItem(t *testing.T) {
	ctx := context.Background()
	client, rec := newTestClient(t, http.StatusCreated, action.Raw{ID: "9", Task: "x"})

	item, err := client.CreateProjectItem(ctx, "3", ItemPayload{
		Task:   "x",
		Status: action.StatusInProgress.Wire(),
	})
	require.NoError(t, err)
	assert.Equal(t, "9", item.ID)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/projects/3/action-items", rec.path)
	// The wire payload carries the underscore status form.
	assert.Equal(t, "in_progress", rec.body["status"])
}

func TestHTTPClient_UpdateEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("shared update uses PATCH", func(t *testing.T) {
		client, rec := newTestClient(t, http.StatusOK, action.Raw{ID: "7"})
		_, err := client.UpdateItem(ctx, "7", ItemPayload{Status: "completed"})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPatch, rec.method)
		assert.Equal(t, "/api/action-items/7", rec.path)
	})

	t.Run("global update uses PUT", func(t *testing.T) {
		client, rec := newTestClient(t, http.StatusOK, action.Raw{ID: "7"})
		_, err := client.UpdateGlobalItem(ctx, "7", ItemPayload{Task: "y"})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, rec.method)
	})
}

func TestHTTPClient_LinkUnlink(t *testing.T) {
	ctx := context.Background()

	t.Run("link posts to project item path", func(t *testing.T) {
		client, rec := newTestClient(t, http.StatusNoContent, nil)
		require.NoError(t, client.LinkItemToProject(ctx, "3", "7"))
		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "/api/projects/3/action-items/7", rec.path)
	})

	t.Run("unlink deletes project item path", func(t *testing.T) {
		client, rec := newTestClient(t, http.StatusNoContent, nil)
		require.NoError(t, client.UnlinkItemFromProject(ctx, "3", "7"))
		assert.Equal(t, http.MethodDelete, rec.method)
		assert.Equal(t, "/api/projects/3/action-items/7", rec.path)
	})
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusNotFound, map[string]string{"message": "no such item"})
		err := client.DeleteItem(ctx, "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, "no such item", statusErr.Message)
	})

	t.Run("500 carries status code", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusInternalServerError, nil)
		_, err := client.ListGlobalItems(ctx)
		require.Error(t, err)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
		assert.False(t, errors.Is(err, ErrNotFound))
	})
}
