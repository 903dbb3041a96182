package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/metrics"
	"github.com/sourcegraph/conc"
)

// MusicianLister supplies the musician catalog used to fill performer images
type MusicianLister interface {
	ListMusicians(ctx context.Context) ([]*domain.Musician, error)
}

// Enricher builds the collector detail view by joining the collector record
// with the album and musician catalogs.
type Enricher struct {
	collectors domain.CollectorRepository
	albums     domain.AlbumRepository
	musicians  MusicianLister
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewEnricher creates an Enricher
func NewEnricher(
	collectors domain.CollectorRepository,
	albums domain.AlbumRepository,
	musicians MusicianLister,
	rec metrics.Recorder,
	logger *slog.Logger,
) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Enricher{
		collectors: collectors,
		albums:     albums,
		musicians:  musicians,
		metrics:    rec,
		logger:     logger,
	}
}

// CollectorDetail emits Loading, then Success or Failure, then closes.
// Only a failed collector fetch produces Failure.
func (e *Enricher) CollectorDetail(ctx context.Context, collectorID int) <-chan domain.Result[*domain.EnrichedCollector] {
	out := make(chan domain.Result[*domain.EnrichedCollector], 2)
	out <- domain.Loading[*domain.EnrichedCollector]()

	go func() {
		defer close(out)
		enriched, err := e.Enrich(ctx, collectorID)
		if err != nil {
			out <- domain.Failure[*domain.EnrichedCollector](err)
			return
		}
		out <- domain.Success(enriched)
	}()
	return out
}

// Enrich fetches the collector and the album catalog in parallel and joins them.
func (e *Enricher) Enrich(ctx context.Context, collectorID int) (*domain.EnrichedCollector, error) {
	var (
		detail    *domain.CollectorDetail
		detailErr error
		albums    []*domain.Album
		albumsErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		detail, detailErr = e.collectors.GetCollector(ctx, collectorID)
	})
	wg.Go(func() {
		albums, albumsErr = e.albums.ListAlbums(ctx)
	})
	wg.Wait()

	if detailErr != nil {
		e.logger.Error("failed to fetch collector", "collectorID", collectorID, "error", detailErr)
		e.metrics.ObserveEnrichment(0, 0, true)
		return nil, fmt.Errorf("failed to load collector %d: %w", collectorID, detailErr)
	}
	if albumsErr != nil {
		e.logger.Warn("album catalog unavailable, using placeholders", "collectorID", collectorID, "error", albumsErr)
		albums = nil
	}

	owned, placeholders := joinAlbums(detail.Albums, albums)
	performers, matched := e.enrichPerformers(ctx, detail.FavoritePerformers)

	e.metrics.ObserveEnrichment(placeholders, matched, false)
	e.logger.Debug("collector enriched",
		"collectorID", collectorID,
		"albums", len(owned),
		"placeholders", placeholders,
		"performerMatches", matched)

	return &domain.EnrichedCollector{
		ID:                 detail.ID,
		Name:               detail.Name,
		Telephone:          detail.Telephone,
		Email:              detail.Email,
		Albums:             owned,
		FavoritePerformers: performers,
	}, nil
}

// joinAlbums decorates each ownership entry with catalog name and cover.
// Entries missing from the catalog become placeholders that keep their price.
func joinAlbums(owned []domain.CollectorAlbum, catalog []*domain.Album) ([]domain.EnrichedCollectorAlbum, int) {
	byID := make(map[int]*domain.Album, len(catalog))
	for _, a := range catalog {
		if a != nil {
			byID[a.ID] = a
		}
	}

	out := make([]domain.EnrichedCollectorAlbum, 0, len(owned))
	placeholders := 0
	for _, o := range owned {
		entry := domain.EnrichedCollectorAlbum{
			AlbumID: o.AlbumID,
			Price:   o.Price,
			Status:  o.Status,
		}
		if a, ok := byID[o.AlbumID]; ok {
			entry.Name = a.Name
			entry.Cover = a.Cover
		} else {
			entry.Name = domain.PlaceholderAlbumName(o.AlbumID)
			placeholders++
		}
		out = append(out, entry)
	}
	return out, placeholders
}

// enrichPerformers fills blank performer images from the musician catalog.
// The catalog is only fetched when some performer needs it; a failed fetch
// leaves the performers as they are.
func (e *Enricher) enrichPerformers(ctx context.Context, performers []domain.Performer) ([]domain.Performer, int) {
	needy := false
	for _, p := range performers {
		if isBlank(p.Image) {
			needy = true
			break
		}
	}
	if !needy || e.musicians == nil {
		return performers, 0
	}

	musicians, err := e.musicians.ListMusicians(ctx)
	if err != nil {
		e.logger.Warn("musician catalog unavailable, performer images left blank", "error", err)
		return performers, 0
	}

	out := make([]domain.Performer, len(performers))
	copy(out, performers)
	matched := 0
	for i := range out {
		if !isBlank(out[i].Image) {
			continue
		}
		if img, ok := imageFor(out[i].Name, musicians); ok {
			out[i].Image = img
			matched++
		}
	}
	return out, matched
}
