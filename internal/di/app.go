package di

import (
	"context"
	"log/slog"

	"github.com/mmcdole/vinilo/internal/adapter"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/metrics"
	"github.com/mmcdole/vinilo/internal/store"
	"github.com/mmcdole/vinilo/internal/tui"
	"github.com/sourcegraph/conc"
)

// App is the fully wired application
type App struct {
	Config   *adapter.Config
	Logger   *slog.Logger
	DB       *store.DB
	Services tui.Services
	Metrics  metrics.Recorder
}

func NewApp(cfg *adapter.Config, logger *slog.Logger, db *store.DB, svc tui.Services, rec metrics.Recorder) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Services: svc,
		Metrics:  rec,
	}
}

// Sync refreshes both cached tables concurrently. Remote failures are
// reported per table in the results; the error is the first local failure.
func (a *App) Sync(ctx context.Context, force bool) ([]domain.SyncResult, error) {
	type refresher interface {
		RefreshIfNeeded(ctx context.Context) (domain.SyncResult, error)
		ForceRefresh(ctx context.Context) (domain.SyncResult, error)
	}
	syncs := []refresher{a.Services.Musicians, a.Services.Collectors}

	results := make([]domain.SyncResult, len(syncs))
	errs := make([]error, len(syncs))

	var wg conc.WaitGroup
	for i, s := range syncs {
		wg.Go(func() {
			if force {
				results[i], errs[i] = s.ForceRefresh(ctx)
			} else {
				results[i], errs[i] = s.RefreshIfNeeded(ctx)
			}
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
