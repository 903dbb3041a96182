package vinilos

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, nil)
}

func TestClient_ListMusicians(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/musicians", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id":100,"name":"Rubén Blades Bellido de Luna","image":"https://img/ruben.jpg",
			 "description":"Cantante panameño","birthDate":"1948-07-16T00:00:00.000Z",
			 "albums":[{"id":100},{"id":101}]},
			{"id":101,"name":"Celia Cruz","image":"","birthDate":""}
		]`)
	})

	got, err := c.ListMusicians(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 100, got[0].ID)
	assert.Equal(t, 2, got[0].AlbumCount)
	assert.Equal(t, "1948-07-16", got[0].FormattedBirthDate())
	assert.Equal(t, int64(0), got[0].LastUpdated, "stamping is the synchronizer's job")
	assert.True(t, got[1].BirthDate.IsZero())
}

func TestClient_GetCollectorMapsOwnership(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collectors/100", r.URL.Path)
		io.WriteString(w, `{
			"id":100,"name":"Manolo Bellon","telephone":"3502457896","email":"manollo@caracol.com.co",
			"favoritePerformers":[{"id":1,"name":"Rubén Blades","image":""}],
			"collectorAlbums":[
				{"id":1,"price":35,"status":"Active","album":{"id":100,"name":"Buscando América"}},
				{"id":2,"albumId":101,"price":25,"status":"Inactive"},
				{"id":102,"price":50,"status":"Active"}
			]
		}`)
	})

	got, err := c.GetCollector(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, "Manolo Bellon", got.Name)
	assert.Equal(t, 3, got.AlbumCount)
	require.Len(t, got.Albums, 3)
	assert.Equal(t, domain.CollectorAlbum{AlbumID: 100, Price: 35, Status: "Active"}, got.Albums[0])
	assert.Equal(t, 101, got.Albums[1].AlbumID)
	assert.Equal(t, 102, got.Albums[2].AlbumID)
	require.Len(t, got.FavoritePerformers, 1)
	assert.Equal(t, "Rubén Blades", got.FavoritePerformers[0].Name)
}

func TestClient_GzipResponses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, `[{"id":1,"name":"Poeta del pueblo","cover":"c.jpg","releaseDate":"1984-08-01T00:00:00.000Z"}]`)
		gz.Close()
	})

	got, err := c.ListAlbums(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1984, got[0].Year())
}

func TestClient_PostComment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/albums/100/comments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req NewCommentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, NewCommentRequest{Description: "Great", Rating: 5, Collector: IDRef{ID: 7}}, req)

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":55,"description":"Great","rating":5}`)
	})

	got, err := c.PostComment(context.Background(), 100, domain.NewComment{Description: "Great", Rating: 5, CollectorID: 7})
	require.NoError(t, err)
	assert.Equal(t, &domain.Comment{ID: 55, Description: "Great", Rating: 5, CollectorID: 7}, got)
}

func TestClient_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"statusCode":404,"message":"The album with the given id was not found"}`)
		})
		_, err := c.GetAlbum(context.Background(), 9)

		var re *domain.RemoteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, http.StatusNotFound, re.Status)
		assert.Equal(t, "The album with the given id was not found", re.Message)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		_, err := c.ListCollectors(context.Background())

		var re *domain.RemoteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, 500, re.Status)
		assert.True(t, domain.IsRemote(err))
	})

	t.Run("malformed payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{not json`)
		})
		_, err := c.ListMusicians(context.Background())
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})

	t.Run("offline", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewClient(srv.URL, time.Second, nil)

		_, err := c.ListMusicians(context.Background())
		assert.ErrorIs(t, err, domain.ErrServerOffline)
	})

	t.Run("cancelled", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.ListMusicians(ctx)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

// Failures are returned to the caller, which decides how loudly to report them
func TestClient_FailuresLogBelowWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	_, err := NewClient(srv.URL, time.Second, logger).ListMusicians(context.Background())
	require.Error(t, err)

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	_, err = NewClient(down.URL, time.Second, logger).ListCollectors(context.Background())
	require.ErrorIs(t, err, domain.ErrServerOffline)

	out := buf.String()
	assert.Contains(t, out, "catalog request error")
	assert.Contains(t, out, "catalog request failed")
	assert.NotContains(t, out, `"level":"ERROR"`)
	assert.NotContains(t, out, `"level":"WARN"`)
}
