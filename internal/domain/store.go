package domain

import (
	"context"
	"time"
)

// Table is the local cache for one entity type.
// Only the synchronizer writes; everything else reads.
type Table[T Record] interface {
	// Name identifies the entity type ("musicians", "collectors")
	Name() string

	// ReadPage returns up to limit rows with id > afterID, ordered by id ascending.
	// afterID < 0 starts from the beginning.
	ReadPage(ctx context.Context, afterID, limit int) ([]T, error)

	// All returns every row ordered by id ascending
	All(ctx context.Context) ([]T, error)

	// ReplaceAll atomically swaps the table contents for records.
	// Readers observe either the old set or the new set, never a mix.
	ReplaceAll(ctx context.Context, records []T) error

	// MaxLastUpdated returns the newest stamp, ok=false when the table is empty
	MaxLastUpdated(ctx context.Context) (ts time.Time, ok bool, err error)

	Count(ctx context.Context) (int, error)

	// Subscribe returns a channel that receives a value after every committed
	// change. The channel is buffered by one; bursts coalesce.
	Subscribe() (<-chan struct{}, func())
}

// SyncResult summarizes what happened during a refresh.
type SyncResult struct {
	Entity    string // Which table this result is for
	FromCache bool   // true if the cache was fresh (no network fetch)
	Count     int    // rows in the table after the operation
	RemoteErr error  // remote failure that was absorbed; cache left untouched
}

// Refreshed reports whether new rows were written.
func (r SyncResult) Refreshed() bool {
	return !r.FromCache && r.RemoteErr == nil
}

// Position marks where a paged reader was, so it can be reopened after a restart.
type Position struct {
	Loaded   int // rows loaded so far
	AnchorID int // id of the first visible row, -1 for top
}

// TopPosition is the position of a freshly opened list.
var TopPosition = Position{Loaded: 0, AnchorID: -1}
