package tui

import (
	"github.com/mmcdole/vinilo/internal/catalog"
	"github.com/mmcdole/vinilo/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// AlbumsLoadedMsg signals that the album catalog has been loaded
type AlbumsLoadedMsg struct {
	Albums []*domain.Album
}

// AlbumLoadedMsg carries one album with tracks and comments
type AlbumLoadedMsg struct {
	Album *domain.Album
}

// CommentPostedMsg signals a comment was accepted
type CommentPostedMsg struct {
	AlbumID int
	Comment *domain.Comment
}

// CommentFailedMsg keeps the form open with the error
type CommentFailedMsg struct {
	Err error
}

// SyncDoneMsg reports a finished cache refresh
type SyncDoneMsg struct {
	Result domain.SyncResult
	Forced bool
	Err    error // local store failure
}

// MusiciansSnapshotMsg carries a new musician list state
type MusiciansSnapshotMsg struct {
	Stream   *catalog.Stream[*domain.Musician]
	Snapshot catalog.Snapshot[*domain.Musician]
}

// CollectorsSnapshotMsg carries a new collector list state
type CollectorsSnapshotMsg struct {
	Stream   *catalog.Stream[*domain.Collector]
	Snapshot catalog.Snapshot[*domain.Collector]
}

// CollectorDetailMsg carries one state of the collector detail stream
type CollectorDetailMsg struct {
	CollectorID int
	Result      domain.Result[*domain.EnrichedCollector]
	next        <-chan domain.Result[*domain.EnrichedCollector]
}

// SearchIndexedMsg signals the search index was rebuilt
type SearchIndexedMsg struct {
	Count int
}

// TickMsg drives the spinner
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	ID int
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
