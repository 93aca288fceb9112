package debugserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/marksync/internal/core/listsync"
	"github.com/colonyops/marksync/internal/core/task"
)

func startServer(t *testing.T, lists Lists) string {
	t.Helper()

	server := New("127.0.0.1:0", lists)
	require.NoError(t, server.Start(context.Background()), "Start() error")
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})

	return "http://" + server.Addr()
}

func newManager(t *testing.T) *listsync.Manager {
	t.Helper()

	opts := listsync.DefaultOptions()
	opts.Debounce = time.Hour
	mgr := listsync.NewManager(opts)
	t.Cleanup(func() { _ = mgr.Close() })

	mgr.Open("work", listsync.State{
		Markdown: "* [ ] ship",
		Tasks:    []task.Task{{ID: "a", Text: "ship"}},
	})
	return mgr
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err, "GET %s error", url)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := New("127.0.0.1:0", listsync.NewManager(listsync.DefaultOptions()))
	assert.Empty(t, server.Addr())

	require.NoError(t, server.Start(context.Background()))
	assert.NotEmpty(t, server.Addr())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(shutdownCtx))
}

func TestServer_PprofEndpoints(t *testing.T) {
	baseURL := startServer(t, newManager(t))

	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "index", endpoint: "/debug/pprof/"},
		{name: "cmdline", endpoint: "/debug/pprof/cmdline"},
		{name: "symbol", endpoint: "/debug/pprof/symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, baseURL+tt.endpoint)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestServer_Lists(t *testing.T) {
	baseURL := startServer(t, newManager(t))

	resp := get(t, baseURL+"/lists")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lists []listInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lists))
	assert.Equal(t, []listInfo{{ID: "work"}}, lists)

	resp = get(t, baseURL+"/lists/work")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state listsync.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, "* [ ] ship", state.Markdown)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "a", state.Tasks[0].ID)

	resp = get(t, baseURL+"/lists/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListsShowUndoHistory(t *testing.T) {
	mgr := newManager(t)
	baseURL := startServer(t, mgr)

	work, ok := mgr.Get("work")
	require.True(t, ok)
	_, err := work.Apply(listsync.Toggle("a"))
	require.NoError(t, err)
	_, err = work.Apply(listsync.Delete("a"))
	require.NoError(t, err)

	var lists []listInfo
	require.NoError(t, json.NewDecoder(get(t, baseURL+"/lists").Body).Decode(&lists))
	require.Len(t, lists, 1)
	assert.Equal(t, 2, lists[0].Undo)
	assert.Equal(t, "delete", lists[0].LastOp)

	var detail listDetail
	require.NoError(t, json.NewDecoder(get(t, baseURL+"/lists/work").Body).Decode(&detail))
	assert.Empty(t, detail.Tasks)
	require.Len(t, detail.Undo, 2)
	assert.Equal(t, "delete", detail.Undo[0].Op, "newest first")
	assert.Equal(t, "toggle", detail.Undo[1].Op)
	assert.NotEmpty(t, detail.Undo[0].ID)
}
