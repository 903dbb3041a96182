package di

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/vinilo/internal/adapter"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, serverURL string) *adapter.Config {
	t.Helper()
	cfg := adapter.DefaultConfig()
	cfg.Server.URL = serverURL
	cfg.Server.Timeout = time.Second
	cfg.Cache.Dir = t.TempDir()
	cfg.Cache.MemoryMB = 0
	return cfg
}

func TestInitApp_SyncFillsBothTables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/musicians":
			io.WriteString(w, `[{"id":100,"name":"Rubén Blades"},{"id":101,"name":"Celia Cruz"}]`)
		case "/collectors":
			io.WriteString(w, `[{"id":100,"name":"Manolo Bellon"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	app, cleanup, err := InitApp(testConfig(t, srv.URL), adapter.NullLogger())
	require.NoError(t, err)
	defer cleanup()

	results, err := app.Sync(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Count)
	assert.Equal(t, 1, results[1].Count)
	assert.True(t, results[0].Refreshed())

	// Fresh now, so a second pass reads the cache
	results, err = app.Sync(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, results[0].FromCache)
	assert.True(t, results[1].FromCache)
}

func TestInitApp_OfflineSyncKeepsCache(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	app, cleanup, err := InitApp(testConfig(t, url), adapter.NullLogger())
	require.NoError(t, err)
	defer cleanup()

	results, err := app.Sync(context.Background(), true)
	require.NoError(t, err, "remote failures are not local failures")
	for _, r := range results {
		assert.ErrorIs(t, r.RemoteErr, domain.ErrServerOffline)
		assert.Zero(t, r.Count)
	}
}
