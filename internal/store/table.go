package store

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/vinilo/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Table stores one entity type in its own bucket, keyed by id.
// Implements domain.Table.
type Table[T domain.Record] struct {
	db     *DB
	name   string
	bucket []byte

	// gen is bumped after every committed replace; page cache keys embed it
	gen atomic.Uint64

	subMu sync.Mutex
	subs  map[int]chan struct{}
	next  int
}

// NewTable opens the named table, creating its bucket if needed
func NewTable[T domain.Record](db *DB, name string) (*Table[T], error) {
	t := &Table[T]{
		db:     db,
		name:   name,
		bucket: []byte(name),
		subs:   make(map[int]chan struct{}),
	}
	err := db.update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(t.bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return t, nil
}

func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) ReadPage(ctx context.Context, afterID, limit int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || afterID == math.MaxInt {
		return nil, nil
	}

	cacheKey := fmt.Sprintf("%s:%d:%d:%d", t.name, t.gen.Load(), afterID, limit)
	if data, ok := t.db.getPage(cacheKey); ok {
		var rows []T
		if err := unmarshal(data, &rows); err == nil {
			return rows, nil
		}
	}

	var rows []T
	err := t.db.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()

		var k, v []byte
		if afterID < 0 {
			k, v = c.First()
		} else {
			k, v = c.Seek(idKey(afterID + 1))
		}
		for ; k != nil && len(rows) < limit; k, v = c.Next() {
			var row T
			if err := unmarshal(v, &row); err != nil {
				return fmt.Errorf("corrupt row %d in %s: %w", keyID(k), t.name, err)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data, err := marshal(rows); err == nil {
		t.db.setPage(cacheKey, data)
	}
	return rows, nil
}

func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []T
	err := t.db.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var row T
			if err := unmarshal(v, &row); err != nil {
				return fmt.Errorf("corrupt row %d in %s: %w", keyID(k), t.name, err)
			}
			rows = append(rows, row)
			return nil
		})
	})
	return rows, err
}

// ReplaceAll swaps the bucket contents in a single write transaction.
// A context cancelled before commit rolls the whole batch back.
func (t *Table[T]) ReplaceAll(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded := make([][]byte, len(records))
	var newest int64
	for i, r := range records {
		// Keys are unsigned big-endian, so a negative id would sort last
		if r.GetID() < 0 {
			return fmt.Errorf("%s row has negative id %d: %w", t.name, r.GetID(), ErrInvalidID)
		}
		data, err := marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode %s row %d: %w", t.name, r.GetID(), err)
		}
		encoded[i] = data
		newest = max(newest, r.GetLastUpdated())
	}

	err := t.db.update(func(tx *bolt.Tx) error {
		if tx.Bucket(t.bucket) != nil {
			if err := tx.DeleteBucket(t.bucket); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(t.bucket)
		if err != nil {
			return err
		}
		for i, r := range records {
			if err := b.Put(idKey(r.GetID()), encoded[i]); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		if len(records) == 0 {
			if err := meta.Delete(t.bucket); err != nil {
				return err
			}
		} else if err := meta.Put(t.bucket, int64Bytes(newest)); err != nil {
			return err
		}

		// Last chance to abandon the batch
		return ctx.Err()
	})
	if err != nil {
		return err
	}

	t.gen.Add(1)
	t.notify()
	return nil
}

func (t *Table[T]) MaxLastUpdated(ctx context.Context) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}

	var ms int64
	var ok bool
	err := t.db.view(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(t.bucket)
		if v == nil {
			return nil
		}
		ms, ok = bytesInt64(v), true
		return nil
	})
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

func (t *Table[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := 0
	err := t.db.view(func(tx *bolt.Tx) error {
		if b := tx.Bucket(t.bucket); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// Subscribe registers for change notifications. Call the returned func to unsubscribe.
func (t *Table[T]) Subscribe() (<-chan struct{}, func()) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	id := t.next
	t.next++
	ch := make(chan struct{}, 1)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.subs, id)
			t.subMu.Unlock()
		})
	}
}

// notify wakes every subscriber without blocking
func (t *Table[T]) notify() {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- struct{}{}:
		default: // Pending notification already covers this change
		}
	}
}
