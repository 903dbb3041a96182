package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollector() *domain.CollectorDetail {
	return &domain.CollectorDetail{
		Collector: domain.Collector{ID: 100, Name: "Manolo Bellon", Telephone: "3502457896", Email: "manollo@caracol.com.co"},
		Albums: []domain.CollectorAlbum{
			{AlbumID: 100, Price: 35, Status: "Active"},
			{AlbumID: 101, Price: 25, Status: "Inactive"},
			{AlbumID: 102, Price: 50, Status: "Active"},
		},
		FavoritePerformers: []domain.Performer{
			{ID: 1, Name: "Rubén Blades", Image: "https://img/ruben.jpg"},
		},
	}
}

func testAlbums() []*domain.Album {
	return []*domain.Album{
		{ID: 100, Name: "Buscando América", Cover: "https://img/buscando.jpg"},
		{ID: 101, Name: "Poeta del pueblo", Cover: "https://img/poeta.jpg"},
		{ID: 102, Name: "A Night at the Opera", Cover: "https://img/opera.jpg"},
	}
}

func newTestEnricher(remote *fakeCatalog) *Enricher {
	return NewEnricher(remote, remote, remote, nil, nil)
}

func TestEnrich_AllAlbumsFound(t *testing.T) {
	remote := &fakeCatalog{details: map[int]*domain.CollectorDetail{100: testCollector()}, albums: testAlbums()}

	got, err := newTestEnricher(remote).Enrich(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, "Manolo Bellon", got.Name)
	require.Len(t, got.Albums, 3)
	for _, a := range got.Albums {
		assert.NotEmpty(t, a.Name)
		assert.NotEmpty(t, a.Cover)
		assert.False(t, a.IsPlaceholder())
	}
	assert.Equal(t, 110, got.TotalSpent())
}

func TestEnrich_MissingAlbumOnlyChangesThatEntry(t *testing.T) {
	full := &fakeCatalog{details: map[int]*domain.CollectorDetail{100: testCollector()}, albums: testAlbums()}
	want, err := newTestEnricher(full).Enrich(context.Background(), 100)
	require.NoError(t, err)

	partial := &fakeCatalog{details: map[int]*domain.CollectorDetail{100: testCollector()}, albums: testAlbums()[:1:1]}
	partial.albums = append(partial.albums, testAlbums()[2])
	got, err := newTestEnricher(partial).Enrich(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, want.Albums[0], got.Albums[0])
	assert.Equal(t, want.Albums[2], got.Albums[2])
	assert.Equal(t, domain.EnrichedCollectorAlbum{
		AlbumID: 101, Name: "Album #101", Cover: "", Price: 25, Status: "Inactive",
	}, got.Albums[1])
	assert.True(t, got.Albums[1].IsPlaceholder())
}

func TestEnrich_EmptyCatalogGivesPlaceholder(t *testing.T) {
	detail := testCollector()
	detail.Albums = []domain.CollectorAlbum{{AlbumID: 999, Price: 50}}
	remote := &fakeCatalog{details: map[int]*domain.CollectorDetail{100: detail}}

	got, err := newTestEnricher(remote).Enrich(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, got.Albums, 1)
	assert.Equal(t, "Album #999", got.Albums[0].Name)
	assert.Equal(t, "", got.Albums[0].Cover)
	assert.Equal(t, 50, got.Albums[0].Price)
}

func TestEnrich_AlbumFetchFailureDegrades(t *testing.T) {
	remote := &fakeCatalog{
		details:   map[int]*domain.CollectorDetail{100: testCollector()},
		albumsErr: errors.New("connection reset"),
	}

	got, err := newTestEnricher(remote).Enrich(context.Background(), 100)
	require.NoError(t, err)
	for _, a := range got.Albums {
		assert.True(t, a.IsPlaceholder())
	}
	assert.Equal(t, 110, got.TotalSpent(), "prices survive the degraded join")
}

func TestEnrich_CollectorFailureIsFatal(t *testing.T) {
	remote := &fakeCatalog{details: map[int]*domain.CollectorDetail{}, albums: testAlbums()}

	_, err := newTestEnricher(remote).Enrich(context.Background(), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnrich_FetchesInParallel(t *testing.T) {
	started := make(chan struct{})
	remote := &fakeCatalog{albums: testAlbums(), albumsStarted: started}
	blocking := &blockingCollectors{fakeCatalog: remote, detail: testCollector(), wait: started}

	done := make(chan error, 1)
	go func() {
		_, err := NewEnricher(blocking, remote, remote, nil, nil).Enrich(context.Background(), 100)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("collector fetch never saw the album fetch start; fetches are sequential")
	}
}

// blockingCollectors answers GetCollector only after wait is closed
type blockingCollectors struct {
	*fakeCatalog
	detail *domain.CollectorDetail
	wait   <-chan struct{}
}

func (b *blockingCollectors) GetCollector(ctx context.Context, id int) (*domain.CollectorDetail, error) {
	select {
	case <-b.wait:
		return b.detail, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestEnrich_PerformersWithImagesSkipMusicianFetch(t *testing.T) {
	remote := &fakeCatalog{details: map[int]*domain.CollectorDetail{100: testCollector()}, albums: testAlbums()}

	got, err := newTestEnricher(remote).Enrich(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, testCollector().FavoritePerformers, got.FavoritePerformers)

	musicianCalls, _, _ := remote.calls()
	assert.Zero(t, musicianCalls)
}

func TestEnrich_FillsBlankPerformerImages(t *testing.T) {
	detail := testCollector()
	detail.FavoritePerformers = []domain.Performer{
		{ID: 1, Name: "Rubén Blades Bellido de Luna", Image: ""},
		{ID: 2, Name: "Queen", Image: "  "},
		{ID: 3, Name: "Nobody Known", Image: ""},
		{ID: 4, Name: "Celia Cruz", Image: "https://img/celia.jpg"},
	}
	remote := &fakeCatalog{
		details: map[int]*domain.CollectorDetail{100: detail},
		musicians: []*domain.Musician{
			{ID: 10, Name: "Rubén Blades", Image: ""}, // matches but blank, skipped
			{ID: 11, Name: "RUBÉN BLADES", Image: "https://img/ruben.jpg"},
			{ID: 12, Name: "Freddie Mercury of Queen", Image: "https://img/queen.jpg"},
			{ID: 13, Name: "Celia Cruz", Image: "https://img/other.jpg"},
		},
	}
	rec := &recordingMetrics{}

	got, err := NewEnricher(remote, remote, remote, rec, nil).Enrich(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, "https://img/ruben.jpg", got.FavoritePerformers[0].Image, "two-word prefix match")
	assert.Equal(t, "https://img/queen.jpg", got.FavoritePerformers[1].Image, "substring match")
	assert.Equal(t, "", got.FavoritePerformers[2].Image, "no match stays blank")
	assert.Equal(t, "https://img/celia.jpg", got.FavoritePerformers[3].Image, "existing image untouched")

	musicianCalls, _, _ := remote.calls()
	assert.Equal(t, 1, musicianCalls)
	assert.Equal(t, "", detail.FavoritePerformers[0].Image, "input is not mutated")
	require.Len(t, rec.enriched, 1)
	assert.Equal(t, [3]int{3, 2, 0}, rec.enriched[0])
}

func TestEnrich_MusicianFetchFailureLeavesPerformers(t *testing.T) {
	detail := testCollector()
	detail.FavoritePerformers = []domain.Performer{{ID: 1, Name: "Rubén Blades", Image: ""}}
	remote := &fakeCatalog{
		details:      map[int]*domain.CollectorDetail{100: detail},
		albums:       testAlbums(),
		musiciansErr: offline,
	}

	got, err := newTestEnricher(remote).Enrich(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, detail.FavoritePerformers, got.FavoritePerformers)
}

func TestCollectorDetail_Stream(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		remote := &fakeCatalog{details: map[int]*domain.CollectorDetail{100: testCollector()}, albums: testAlbums()}
		var states []domain.ResultState
		var got *domain.EnrichedCollector
		for r := range newTestEnricher(remote).CollectorDetail(context.Background(), 100) {
			states = append(states, r.State())
			r.Match(func() {}, func(c *domain.EnrichedCollector) { got = c }, func(err error) { t.Fatal(err) })
		}
		assert.Equal(t, []domain.ResultState{domain.StateLoading, domain.StateSuccess}, states)
		require.NotNil(t, got)
		assert.Equal(t, 100, got.ID)
	})

	t.Run("failure", func(t *testing.T) {
		remote := &fakeCatalog{detailErr: offline}
		var results []domain.Result[*domain.EnrichedCollector]
		for r := range newTestEnricher(remote).CollectorDetail(context.Background(), 100) {
			results = append(results, r)
		}
		require.Len(t, results, 2)
		assert.Equal(t, domain.StateLoading, results[0].State())
		assert.ErrorIs(t, results[1].Err(), domain.ErrServerOffline)
	})
}
