package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/store"
	"github.com/stretchr/testify/require"
)

// fakeCatalog is an in-memory remote with call counters
type fakeCatalog struct {
	mu sync.Mutex

	musicians     []*domain.Musician
	musiciansErr  error
	musicianCalls int

	collectors     []*domain.Collector
	collectorsErr  error
	collectorCalls int

	details   map[int]*domain.CollectorDetail
	detailErr error

	albums     []*domain.Album
	albumsErr  error
	albumCalls int

	// albumsStarted is closed when ListAlbums is entered, if set
	albumsStarted chan struct{}

	posted []domain.NewComment
}

func (f *fakeCatalog) ListMusicians(ctx context.Context) ([]*domain.Musician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.musicianCalls++
	if f.musiciansErr != nil {
		return nil, f.musiciansErr
	}
	out := make([]*domain.Musician, len(f.musicians))
	for i, m := range f.musicians {
		c := *m
		out[i] = &c
	}
	return out, nil
}

func (f *fakeCatalog) GetMusician(ctx context.Context, id int) (*domain.Musician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.musicians {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) ListCollectors(ctx context.Context) ([]*domain.Collector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collectorCalls++
	if f.collectorsErr != nil {
		return nil, f.collectorsErr
	}
	out := make([]*domain.Collector, len(f.collectors))
	for i, c := range f.collectors {
		cc := *c
		out[i] = &cc
	}
	return out, nil
}

func (f *fakeCatalog) GetCollector(ctx context.Context, id int) (*domain.CollectorDetail, error) {
	f.mu.Lock()
	err, d := f.detailErr, f.details[id]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &domain.RemoteError{Op: "GET /collectors", Status: 404, Cause: domain.ErrNotFound}
	}
	return d, nil
}

func (f *fakeCatalog) ListAlbums(ctx context.Context) ([]*domain.Album, error) {
	f.mu.Lock()
	f.albumCalls++
	started := f.albumsStarted
	err, albums := f.albumsErr, f.albums
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if err != nil {
		return nil, err
	}
	return albums, nil
}

func (f *fakeCatalog) GetAlbum(ctx context.Context, id int) (*domain.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.albums {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) PostComment(ctx context.Context, albumID int, comment domain.NewComment) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, comment)
	return &domain.Comment{
		ID:          len(f.posted),
		Description: comment.Description,
		Rating:      comment.Rating,
		CollectorID: comment.CollectorID,
	}, nil
}

func (f *fakeCatalog) calls() (musicians, collectors, albums int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.musicianCalls, f.collectorCalls, f.albumCalls
}

var offline = &domain.RemoteError{Op: "GET /musicians", Message: "connection refused", Cause: domain.ErrServerOffline}

func newMusicianTable(t *testing.T) *store.Table[*domain.Musician] {
	t.Helper()
	db, err := store.Open("", store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	tbl, err := store.NewTable[*domain.Musician](db, store.TableMusicians)
	require.NoError(t, err)
	return tbl
}

func newMusicians(ids ...int) []*domain.Musician {
	out := make([]*domain.Musician, len(ids))
	for i, id := range ids {
		out[i] = &domain.Musician{ID: id, Name: "Musician", Image: "img.jpg"}
	}
	return out
}

func rowIDs[T domain.Record](rows []T) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.GetID()
	}
	return out
}
