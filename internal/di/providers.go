package di

import (
	"log/slog"

	"github.com/mmcdole/vinilo/internal/adapter"
	"github.com/mmcdole/vinilo/internal/adapter/source"
	"github.com/mmcdole/vinilo/internal/catalog"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/metrics"
	"github.com/mmcdole/vinilo/internal/store"
)

// ProvideDB opens the local cache for the configured server
func ProvideDB(cfg *adapter.Config, logger *slog.Logger) (*store.DB, func(), error) {
	db, err := store.Open(cfg.CacheDir(), store.Options{
		PageCacheMB: cfg.Cache.MemoryMB,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close cache", "error", err)
		}
	}, nil
}

func ProvideMusicianTable(db *store.DB) (*store.Table[*domain.Musician], error) {
	return store.NewTable[*domain.Musician](db, store.TableMusicians)
}

func ProvideCollectorTable(db *store.DB) (*store.Table[*domain.Collector], error) {
	return store.NewTable[*domain.Collector](db, store.TableCollectors)
}

func ProvideRecorder(cfg *adapter.Config) metrics.Recorder {
	return metrics.New(cfg.Metrics.Enabled)
}

func ProvideMusicianSync(
	cfg *adapter.Config,
	table *store.Table[*domain.Musician],
	src source.CatalogSource,
	rec metrics.Recorder,
	logger *slog.Logger,
) *catalog.Synchronizer[*domain.Musician] {
	return catalog.NewSynchronizer[*domain.Musician](table, src.ListMusicians, catalog.Policy{TTL: cfg.Cache.MusiciansTTL}, rec, logger)
}

func ProvideCollectorSync(
	cfg *adapter.Config,
	table *store.Table[*domain.Collector],
	src source.CatalogSource,
	rec metrics.Recorder,
	logger *slog.Logger,
) *catalog.Synchronizer[*domain.Collector] {
	return catalog.NewSynchronizer[*domain.Collector](table, src.ListCollectors, catalog.Policy{TTL: cfg.Cache.CollectorsTTL}, rec, logger)
}

func ProvideMusicianPager(cfg *adapter.Config, table *store.Table[*domain.Musician], logger *slog.Logger) *catalog.Pager[*domain.Musician] {
	return catalog.NewPager[*domain.Musician](table, cfg.Cache.PageSize, logger)
}

func ProvideCollectorPager(cfg *adapter.Config, table *store.Table[*domain.Collector], logger *slog.Logger) *catalog.Pager[*domain.Collector] {
	return catalog.NewPager[*domain.Collector](table, cfg.Cache.PageSize, logger)
}

// ProvideEnricher joins collectors against the live album and musician catalogs
func ProvideEnricher(src source.CatalogSource, rec metrics.Recorder, logger *slog.Logger) *catalog.Enricher {
	return catalog.NewEnricher(src, src, src, rec, logger)
}

func ProvideLauncher(cfg *adapter.Config, logger *slog.Logger) *adapter.Launcher {
	return adapter.NewLauncher(cfg.UI.ImageViewer, cfg.UI.ImageViewerArgs, logger)
}

func ProvideAlbums(src source.CatalogSource, logger *slog.Logger) *catalog.Albums {
	return catalog.NewAlbums(src, logger)
}

func ProvideComments(src source.CatalogSource, logger *slog.Logger) *catalog.Comments {
	return catalog.NewComments(src, logger)
}
