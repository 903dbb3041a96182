package domain

import (
	"context"
)

// AlbumRepository provides access to the album catalog
type AlbumRepository interface {
	// ListAlbums returns the full album catalog
	ListAlbums(ctx context.Context) ([]*Album, error)

	// GetAlbum returns one album with tracks, performers and comments
	GetAlbum(ctx context.Context, id int) (*Album, error)
}

// MusicianRepository provides access to the musician catalog
type MusicianRepository interface {
	ListMusicians(ctx context.Context) ([]*Musician, error)
	GetMusician(ctx context.Context, id int) (*Musician, error)
}

// CollectorRepository provides access to collectors
type CollectorRepository interface {
	ListCollectors(ctx context.Context) ([]*Collector, error)

	// GetCollector returns the collector including album ownership and favorites
	GetCollector(ctx context.Context, id int) (*CollectorDetail, error)
}

// CommentRepository posts user comments
type CommentRepository interface {
	PostComment(ctx context.Context, albumID int, comment NewComment) (*Comment, error)
}

// CatalogRepository is everything the remote data source offers.
// Implemented by the HTTP client in adapter/source.
type CatalogRepository interface {
	AlbumRepository
	MusicianRepository
	CollectorRepository
	CommentRepository
}
