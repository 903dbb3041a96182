package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/vinilo/internal/catalog"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/search"
)

// Command factories for async operations. Each takes the context of the
// screen that issued it, so leaving the screen cancels the work.

const (
	requestTimeout = 30 * time.Second
	statusTimeout  = 4 * time.Second
	tickInterval   = 100 * time.Millisecond
)

// LoadAlbumsCmd loads the album catalog
func LoadAlbumsCmd(ctx context.Context, albums *catalog.Albums) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		list, err := albums.List(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading albums"}
		}
		return AlbumsLoadedMsg{Albums: list}
	}
}

// LoadAlbumCmd loads one album with tracks and comments
func LoadAlbumCmd(ctx context.Context, albums *catalog.Albums, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		album, err := albums.Get(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading album"}
		}
		return AlbumLoadedMsg{Album: album}
	}
}

// PostCommentCmd posts a comment as role
func PostCommentCmd(ctx context.Context, comments *catalog.Comments, role domain.Role, albumID int, c domain.NewComment) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		posted, err := comments.Post(ctx, role, albumID, c)
		if err != nil {
			return CommentFailedMsg{Err: err}
		}
		return CommentPostedMsg{AlbumID: albumID, Comment: posted}
	}
}

// Refresher is the part of a synchronizer the screens use
type Refresher interface {
	RefreshIfNeeded(ctx context.Context) (domain.SyncResult, error)
	ForceRefresh(ctx context.Context) (domain.SyncResult, error)
}

// SyncCmd refreshes a cached table, forced or only when stale
func SyncCmd(ctx context.Context, sync Refresher, force bool) tea.Cmd {
	return func() tea.Msg {
		var (
			res domain.SyncResult
			err error
		)
		if force {
			res, err = sync.ForceRefresh(ctx)
		} else {
			res, err = sync.RefreshIfNeeded(ctx)
		}
		return SyncDoneMsg{Result: res, Forced: force, Err: err}
	}
}

// WaitMusiciansCmd waits for the next musician snapshot
func WaitMusiciansCmd(s *catalog.Stream[*domain.Musician]) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-s.Updates()
		if !ok {
			return nil
		}
		return MusiciansSnapshotMsg{Stream: s, Snapshot: snap}
	}
}

// WaitCollectorsCmd waits for the next collector snapshot
func WaitCollectorsCmd(s *catalog.Stream[*domain.Collector]) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-s.Updates()
		if !ok {
			return nil
		}
		return CollectorsSnapshotMsg{Stream: s, Snapshot: snap}
	}
}

// LoadMoreCmd requests the next page of a stream. The rows arrive as a snapshot.
func LoadMoreCmd(ctx context.Context, loadMore func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := loadMore(ctx); err != nil && ctx.Err() == nil {
			return ErrMsg{Err: err, Context: "loading more"}
		}
		return nil
	}
}

// CollectorDetailCmd starts the enriched collector stream
func CollectorDetailCmd(ctx context.Context, enricher *catalog.Enricher, id int) tea.Cmd {
	return waitDetail(id, enricher.CollectorDetail(ctx, id))
}

func waitDetail(id int, ch <-chan domain.Result[*domain.EnrichedCollector]) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return CollectorDetailMsg{CollectorID: id, Result: r, next: ch}
	}
}

// RebuildIndexCmd reloads the search index from the local tables
func RebuildIndexCmd(ctx context.Context, index *search.Index, musicians domain.Table[*domain.Musician], collectors domain.Table[*domain.Collector]) tea.Cmd {
	return func() tea.Msg {
		if err := index.Load(ctx, musicians, collectors); err != nil {
			return ErrMsg{Err: err, Context: "indexing"}
		}
		return SearchIndexedMsg{Count: index.Len()}
	}
}

// ImageOpener opens an image URL outside the terminal
type ImageOpener interface {
	Launch(url string) error
}

// OpenImageCmd opens url with the configured viewer
func OpenImageCmd(opener ImageOpener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Launch(url); err != nil {
			return StatusMsg{Message: err.Error(), IsError: true}
		}
		return StatusMsg{Message: "Opened image"}
	}
}

// TickCmd schedules the next spinner frame
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// ClearStatusCmd clears status message id after a delay
func ClearStatusCmd(id int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return ClearStatusMsg{ID: id} })
}
