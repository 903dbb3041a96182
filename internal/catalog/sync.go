package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/metrics"
)

// DefaultTTL is the freshness window used when none is configured
const DefaultTTL = 5 * time.Minute

// Policy decides when cached rows are stale.
type Policy struct {
	TTL time.Duration
}

// Stale reports whether rows stamped at newest are too old at now.
// An empty table (ok=false) or a stamp later than now is always stale.
func (p Policy) Stale(newest time.Time, ok bool, now time.Time) bool {
	if !ok || newest.After(now) {
		return true
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Sub(newest) > ttl
}

// FetchFunc loads the complete remote collection of one entity type
type FetchFunc[T domain.Record] func(ctx context.Context) ([]T, error)

// Synchronizer keeps one local table fresh. It is the only writer of that table.
type Synchronizer[T domain.Record] struct {
	table   domain.Table[T]
	fetch   FetchFunc[T]
	policy  Policy
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewSynchronizer creates a synchronizer for table, refilled by fetch
func NewSynchronizer[T domain.Record](
	table domain.Table[T],
	fetch FetchFunc[T],
	policy Policy,
	rec metrics.Recorder,
	logger *slog.Logger,
) *Synchronizer[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Synchronizer[T]{
		table:   table,
		fetch:   fetch,
		policy:  policy,
		metrics: rec,
		logger:  logger.With("entity", table.Name()),
		now:     time.Now,
	}
}

// Table returns the table this synchronizer writes
func (s *Synchronizer[T]) Table() domain.Table[T] { return s.table }

// IsStale reports whether the cached rows are missing or older than the TTL
func (s *Synchronizer[T]) IsStale(ctx context.Context) (bool, error) {
	newest, ok, err := s.table.MaxLastUpdated(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read %s freshness: %w", s.table.Name(), err)
	}
	return s.policy.Stale(newest, ok, s.now()), nil
}

// RefreshIfNeeded refetches only when the cache is stale.
// Remote failures are reported in SyncResult.RemoteErr, never as the error;
// the error is reserved for local store failures.
func (s *Synchronizer[T]) RefreshIfNeeded(ctx context.Context) (domain.SyncResult, error) {
	stale, err := s.IsStale(ctx)
	if err != nil {
		s.metrics.ObserveSync(s.table.Name(), metrics.OutcomeStoreError, 0)
		return domain.SyncResult{}, err
	}

	if !stale {
		count, err := s.table.Count(ctx)
		if err != nil {
			return domain.SyncResult{}, fmt.Errorf("failed to count %s: %w", s.table.Name(), err)
		}
		s.logger.Debug("cache fresh", "count", count)
		s.metrics.ObserveSync(s.table.Name(), metrics.OutcomeFresh, 0)
		return domain.SyncResult{Entity: s.table.Name(), FromCache: true, Count: count}, nil
	}

	s.logger.Debug("cache stale, fetching")
	return s.refresh(ctx)
}

// ForceRefresh refetches regardless of staleness. Same error contract as RefreshIfNeeded.
func (s *Synchronizer[T]) ForceRefresh(ctx context.Context) (domain.SyncResult, error) {
	s.logger.Debug("forced refresh")
	return s.refresh(ctx)
}

func (s *Synchronizer[T]) refresh(ctx context.Context) (domain.SyncResult, error) {
	name := s.table.Name()
	start := time.Now()

	rows, err := s.fetch(ctx)
	if err != nil {
		s.metrics.ObserveSync(name, metrics.OutcomeRemoteError, time.Since(start))
		if ctx.Err() != nil {
			s.logger.Debug("refresh cancelled", "error", err)
		} else {
			s.logger.Warn("refresh failed, keeping cached rows", "error", err)
		}

		// The caller's context may be done; the count is still owed.
		count, cerr := s.table.Count(context.WithoutCancel(ctx))
		if cerr != nil {
			return domain.SyncResult{}, fmt.Errorf("failed to count %s: %w", name, cerr)
		}
		return domain.SyncResult{Entity: name, Count: count, RemoteErr: err}, nil
	}

	// One stamp for the whole batch, taken after the fetch returned
	stamp := s.now().UnixMilli()
	for _, r := range rows {
		r.SetLastUpdated(stamp)
	}

	if err := s.table.ReplaceAll(ctx, rows); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Debug("refresh cancelled before replace", "error", err)
			return domain.SyncResult{}, err
		}
		s.metrics.ObserveSync(name, metrics.OutcomeStoreError, time.Since(start))
		s.logger.Error("failed to replace cached rows", "error", err)
		return domain.SyncResult{}, fmt.Errorf("failed to replace %s: %w", name, err)
	}

	s.metrics.ObserveSync(name, metrics.OutcomeRefreshed, time.Since(start))
	s.metrics.SetCachedRows(name, len(rows))
	s.logger.Info("cache refreshed", "count", len(rows), "elapsed", time.Since(start))
	return domain.SyncResult{Entity: name, Count: len(rows)}, nil
}
