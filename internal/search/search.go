package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Kind is the entity type of an indexed item
type Kind int

const (
	KindMusician Kind = iota
	KindCollector
)

func (k Kind) String() string {
	switch k {
	case KindCollector:
		return "collector"
	default:
		return "musician"
	}
}

// Item is a searchable entry
type Item struct {
	Kind   Kind
	ID     int
	Name   string
	Detail string // secondary line shown in results
}

// Result is a match with metadata for highlighting
type Result struct {
	Item
	MatchedIndexes []int
	Score          int // higher is better
}

// names implements sahilm/fuzzy.Source over pre-lowered names
type names []string

func (n names) String(i int) string { return n[i] }
func (n names) Len() int            { return len(n) }

// Index is an in-memory name index over the cached musicians and collectors.
type Index struct {
	mu    sync.RWMutex
	items []Item
	lower names

	logger *slog.Logger
}

// NewIndex creates an empty index
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{logger: logger}
}

// Load rebuilds the index from the local tables
func (x *Index) Load(ctx context.Context, musicians domain.Table[*domain.Musician], collectors domain.Table[*domain.Collector]) error {
	ms, err := musicians.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read musicians for search: %w", err)
	}
	cs, err := collectors.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read collectors for search: %w", err)
	}

	x.Replace(KindMusician, MusicianItems(ms))
	x.Replace(KindCollector, CollectorItems(cs))
	return nil
}

// Replace swaps every item of one kind
func (x *Index) Replace(kind Kind, items []Item) {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.items[:0:0]
	for _, it := range x.items {
		if it.Kind != kind {
			kept = append(kept, it)
		}
	}
	kept = append(kept, items...)

	lower := make(names, len(kept))
	for i, it := range kept {
		lower[i] = strings.ToLower(it.Name)
	}
	x.items, x.lower = kept, lower

	x.logger.Debug("search index rebuilt", "kind", kind, "count", len(items), "total", len(kept))
}

// Len returns the number of indexed items
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.items)
}

// Find returns fuzzy matches ordered best first. With no kinds given, all kinds match.
func (x *Index) Find(query string, kinds ...Kind) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := fuzzy.FindFrom(query, x.lower)
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		it := x.items[m.Index]
		if len(kinds) > 0 && !slices.Contains(kinds, it.Kind) {
			continue
		}
		results = append(results, Result{Item: it, MatchedIndexes: m.MatchedIndexes, Score: m.Score})
	}
	return results
}

// Suggest proposes near-miss names for a query that found nothing, ranked by
// closeness (exact, prefix, substring, then edit distance).
func (x *Index) Suggest(query string, limit int) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	type ranked struct {
		item  Item
		score int
	}
	maxDistance := len([]rune(query))/2 + 1

	var candidates []ranked
	for i, name := range x.lower {
		score, ok := matchScore(name, query, maxDistance)
		if ok {
			candidates = append(candidates, ranked{x.items[i], score})
		}
	}
	slices.SortStableFunc(candidates, func(a, b ranked) int { return a.score - b.score })

	out := make([]Item, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.item)
	}
	return out
}

// matchScore ranks name against query, lower is better
func matchScore(name, query string, maxDistance int) (int, bool) {
	switch {
	case name == query:
		return 0, true
	case strings.HasPrefix(name, query):
		return 10, true
	case strings.Contains(name, query):
		return 50, true
	}

	// Compare against each word too, so "blaedes" finds "rubén blades"
	best := lfuzzy.LevenshteinDistance(query, name)
	for _, word := range strings.Fields(name) {
		best = min(best, lfuzzy.LevenshteinDistance(query, word))
	}
	if best > maxDistance {
		return 0, false
	}
	return 100 + best, true
}

// MusicianItems converts cached musicians to index items
func MusicianItems(ms []*domain.Musician) []Item {
	items := make([]Item, 0, len(ms))
	for _, m := range ms {
		items = append(items, Item{Kind: KindMusician, ID: m.ID, Name: m.Name, Detail: m.FormattedBirthDate()})
	}
	return items
}

// CollectorItems converts cached collectors to index items
func CollectorItems(cs []*domain.Collector) []Item {
	items := make([]Item, 0, len(cs))
	for _, c := range cs {
		items = append(items, Item{Kind: KindCollector, ID: c.ID, Name: c.Name, Detail: c.Email})
	}
	return items
}
