package search

import (
	"context"
	"testing"

	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex() *Index {
	x := NewIndex(nil)
	x.Replace(KindMusician, MusicianItems([]*domain.Musician{
		{ID: 100, Name: "Rubén Blades Bellido de Luna"},
		{ID: 101, Name: "Celia Cruz"},
		{ID: 102, Name: "Freddie Mercury"},
	}))
	x.Replace(KindCollector, CollectorItems([]*domain.Collector{
		{ID: 100, Name: "Manolo Bellon", Email: "manollo@caracol.com.co"},
		{ID: 101, Name: "Jaime Monsalve", Email: "jmonsalve@rtvc.com.co"},
	}))
	return x
}

func TestIndex_Find(t *testing.T) {
	x := testIndex()
	assert.Equal(t, 5, x.Len())

	results := x.Find("CELIA")
	require.NotEmpty(t, results)
	assert.Equal(t, "Celia Cruz", results[0].Name)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, results[0].MatchedIndexes)

	results = x.Find("bell")
	require.Len(t, results, 2)

	results = x.Find("bell", KindCollector)
	require.Len(t, results, 1)
	assert.Equal(t, "Manolo Bellon", results[0].Name)
	assert.Equal(t, "manollo@caracol.com.co", results[0].Detail)

	assert.Nil(t, x.Find("   "))
	assert.Empty(t, x.Find("zzzz"))
}

func TestIndex_ReplaceOnlyTouchesOneKind(t *testing.T) {
	x := testIndex()
	x.Replace(KindMusician, MusicianItems([]*domain.Musician{{ID: 7, Name: "Shakira"}}))

	assert.Equal(t, 3, x.Len())
	assert.Empty(t, x.Find("celia"))
	assert.NotEmpty(t, x.Find("shakira", KindMusician))
	assert.NotEmpty(t, x.Find("monsalve", KindCollector))
}

func TestIndex_Suggest(t *testing.T) {
	x := testIndex()

	got := x.Suggest("blaedes", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, 100, got[0].ID)
	assert.Equal(t, KindMusician, got[0].Kind)

	got = x.Suggest("celia cruz", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "Celia Cruz", got[0].Name, "exact match ranks first")

	assert.Empty(t, x.Suggest("qwertyuiop", 3))
	assert.Nil(t, x.Suggest("celia", 0))
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name, query string
		score       int
		ok          bool
	}{
		{"celia cruz", "celia cruz", 0, true},
		{"celia cruz", "celia", 10, true},
		{"celia cruz", "cruz", 50, true},
		{"celia cruz", "cruc", 101, true},
		{"celia cruz", "xxxxxx", 0, false},
	}
	for _, tt := range tests {
		score, ok := matchScore(tt.name, tt.query, 3)
		assert.Equal(t, tt.ok, ok, tt.query)
		if tt.ok {
			assert.Equal(t, tt.score, score, tt.query)
		}
	}
}

func TestIndex_LoadFromStore(t *testing.T) {
	db, err := store.Open("", store.Options{})
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	ms, err := store.NewTable[*domain.Musician](db, store.TableMusicians)
	require.NoError(t, err)
	cs, err := store.NewTable[*domain.Collector](db, store.TableCollectors)
	require.NoError(t, err)
	require.NoError(t, ms.ReplaceAll(ctx, []*domain.Musician{{ID: 1, Name: "Celia Cruz", LastUpdated: 1}}))
	require.NoError(t, cs.ReplaceAll(ctx, []*domain.Collector{{ID: 2, Name: "Manolo Bellon", LastUpdated: 1}}))

	x := NewIndex(nil)
	require.NoError(t, x.Load(ctx, ms, cs))
	assert.Equal(t, 2, x.Len())
	assert.Equal(t, 2, x.Find("manolo")[0].ID)
}
