package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/vinilo/internal/domain"
)

// DefaultPageSize is used when a pager is created with a non-positive size
const DefaultPageSize = 20

// ErrStreamClosed is returned by LoadMore after Close
var ErrStreamClosed = errors.New("paged stream is closed")

// Snapshot is the loaded prefix of a table at one point in time.
type Snapshot[T domain.Record] struct {
	Items    []T
	End      bool // no rows beyond Items
	Position domain.Position
	Err      error // store read failure; Items holds the last good rows
}

// Pager opens incrementally loaded, self-refreshing views over a table.
type Pager[T domain.Record] struct {
	table    domain.Table[T]
	pageSize int
	logger   *slog.Logger
}

// NewPager creates a pager reading pageSize rows per page
func NewPager[T domain.Record](table domain.Table[T], pageSize int, logger *slog.Logger) *Pager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager[T]{table: table, pageSize: pageSize, logger: logger.With("entity", table.Name())}
}

// PageSize returns the number of rows per page
func (p *Pager[T]) PageSize() int { return p.pageSize }

// Open starts a stream at pos. The first snapshot arrives on Updates once
// the initial range is loaded. The stream lives until ctx is done or Close.
func (p *Pager[T]) Open(ctx context.Context, pos domain.Position) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)
	changes, unsubscribe := p.table.Subscribe()

	s := &Stream[T]{
		pager:       p,
		updates:     make(chan Snapshot[T], 1),
		cancel:      cancel,
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
		anchor:      pos.AnchorID,
	}
	go s.run(ctx, pos, changes)
	return s
}

// Stream is one consumer's view of a table: the rows loaded so far,
// reloaded whenever the table changes.
type Stream[T domain.Record] struct {
	pager       *Pager[T]
	updates     chan Snapshot[T]
	cancel      context.CancelFunc
	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once

	// mu serializes loads and guards the fields below
	mu     sync.Mutex
	items  []T
	want   int // rows to keep loaded across reloads
	end    bool
	anchor int
	closed bool
}

// Updates delivers snapshots. Delivery is latest-wins: an unread snapshot is
// replaced by a newer one. The channel is closed by Close.
func (s *Stream[T]) Updates() <-chan Snapshot[T] {
	return s.updates
}

// Position returns where the consumer is, for reopening later
func (s *Stream[T]) Position() domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

// SetAnchor records the id of the first visible row
func (s *Stream[T]) SetAnchor(id int) {
	s.mu.Lock()
	s.anchor = id
	s.mu.Unlock()
}

// LoadMore appends the next page and emits a snapshot. It is a no-op at the end.
func (s *Stream[T]) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}
	if s.end {
		return nil
	}

	// Re-read the whole range so rows loaded earlier cannot mix with rows
	// from a batch committed since.
	if err := s.readPrefixLocked(ctx, len(s.items)+s.pager.pageSize); err != nil {
		s.emitLocked(err)
		return err
	}
	s.want = max(s.want, len(s.items))
	s.emitLocked(nil)
	return nil
}

// Close stops watching the table and closes Updates. Safe to call twice.
func (s *Stream[T]) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.unsubscribe()
		<-s.done

		s.mu.Lock()
		s.closed = true
		close(s.updates)
		s.mu.Unlock()
	})
}

func (s *Stream[T]) run(ctx context.Context, pos domain.Position, changes <-chan struct{}) {
	defer close(s.done)

	s.initial(ctx, pos)
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			s.reload(ctx)
		}
	}
}

// initial loads enough rows to cover pos: at least one page, at least
// pos.Loaded rows, and the anchor row if it still exists.
func (s *Stream[T]) initial(ctx context.Context, pos domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.want = max(pos.Loaded, s.pager.pageSize)
	if err := s.readPrefixLocked(ctx, s.want); err != nil {
		s.emitLocked(err)
		return
	}
	for pos.AnchorID >= 0 && !s.end && s.items[len(s.items)-1].GetID() < pos.AnchorID {
		if err := s.readPrefixLocked(ctx, len(s.items)+s.pager.pageSize); err != nil {
			s.emitLocked(err)
			return
		}
	}
	s.want = max(s.want, len(s.items))
	s.emitLocked(nil)
}

// reload replaces the loaded range with the table's current rows. The range
// is what the consumer asked for, so a briefly empty table does not shrink it.
func (s *Stream[T]) reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	err := s.readPrefixLocked(ctx, s.want)
	if err != nil && ctx.Err() == nil {
		s.pager.logger.Error("failed to reload page range", "error", err)
	}
	if ctx.Err() == nil {
		s.emitLocked(err)
	}
}

// readPrefixLocked reads the first n rows in one store read so the result
// comes from a single committed batch.
func (s *Stream[T]) readPrefixLocked(ctx context.Context, n int) error {
	rows, err := s.pager.table.ReadPage(ctx, -1, n)
	if err != nil {
		return err
	}
	s.items = rows
	s.end = len(rows) < n
	return nil
}

func (s *Stream[T]) positionLocked() domain.Position {
	return domain.Position{Loaded: len(s.items), AnchorID: s.anchor}
}

// emitLocked publishes the current state, replacing any unread snapshot
func (s *Stream[T]) emitLocked(err error) {
	if s.closed {
		return
	}
	snap := Snapshot[T]{
		Items:    slices.Clone(s.items),
		End:      s.end,
		Position: s.positionLocked(),
		Err:      err,
	}
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
	default:
	}
}
