package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlbums_ListSortedByID(t *testing.T) {
	remote := &fakeCatalog{albums: []*domain.Album{{ID: 3}, {ID: 1}, {ID: 2}}}

	got, err := NewAlbums(remote, nil).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].ID, got[1].ID, got[2].ID})

	album, err := NewAlbums(remote, nil).Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, album.ID)

	_, err = NewAlbums(remote, nil).Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComments_Post(t *testing.T) {
	valid := domain.NewComment{Description: "  Gran álbum  ", Rating: 5, CollectorID: 100}

	t.Run("visitor is forbidden", func(t *testing.T) {
		remote := &fakeCatalog{}
		_, err := NewComments(remote, nil).Post(context.Background(), domain.RoleVisitor, 1, valid)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Empty(t, remote.posted)
	})

	t.Run("collector posts trimmed comment", func(t *testing.T) {
		remote := &fakeCatalog{}
		got, err := NewComments(remote, nil).Post(context.Background(), domain.RoleCollector, 1, valid)
		require.NoError(t, err)
		assert.Equal(t, "Gran álbum", got.Description)
		require.Len(t, remote.posted, 1)
		assert.Equal(t, 100, remote.posted[0].CollectorID)
	})

	invalid := map[string]domain.NewComment{
		"blank description": {Description: "   ", Rating: 3, CollectorID: 1},
		"rating too high":   {Description: "ok", Rating: 6, CollectorID: 1},
		"rating missing":    {Description: "ok", Rating: 0, CollectorID: 1},
		"no collector":      {Description: "ok", Rating: 3},
		"too long":          {Description: strings.Repeat("a", 501), Rating: 3, CollectorID: 1},
	}
	for name, c := range invalid {
		t.Run(name, func(t *testing.T) {
			remote := &fakeCatalog{}
			_, err := NewComments(remote, nil).Post(context.Background(), domain.RoleCollector, 1, c)
			assert.ErrorIs(t, err, domain.ErrInvalidComment)
			assert.Empty(t, remote.posted)
		})
	}
}
