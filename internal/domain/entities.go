package domain

import (
	"fmt"
	"time"
)

// Record is a row that can live in the local cache.
// Implemented by pointer types so the synchronizer can stamp a batch in place.
type Record interface {
	GetID() int
	GetName() string
	GetLastUpdated() int64
	SetLastUpdated(ms int64)
}

// Musician represents a solo performer from the catalog
type Musician struct {
	ID          int       // Catalog-wide unique identifier
	Name        string    // Display name
	Image       string    // Portrait URL
	Description string    // Short biography
	BirthDate   time.Time // Zero when unknown
	AlbumCount  int       // Number of albums the musician appears on

	// LastUpdated is the wall-clock time (ms since epoch) at which the row
	// was written by a successful refresh. Zero for records not yet cached.
	LastUpdated int64
}

func (m *Musician) GetID() int              { return m.ID }
func (m *Musician) GetName() string         { return m.Name }
func (m *Musician) GetLastUpdated() int64   { return m.LastUpdated }
func (m *Musician) SetLastUpdated(ms int64) { m.LastUpdated = ms }

// FormattedBirthDate returns the birth date as YYYY-MM-DD, or "" when unknown
func (m Musician) FormattedBirthDate() string {
	if m.BirthDate.IsZero() {
		return ""
	}
	return m.BirthDate.Format("2006-01-02")
}

// Collector represents a user who owns albums
type Collector struct {
	ID          int
	Name        string
	Telephone   string
	Email       string
	AlbumCount  int // Number of albums in the collection
	LastUpdated int64
}

func (c *Collector) GetID() int              { return c.ID }
func (c *Collector) GetName() string         { return c.Name }
func (c *Collector) GetLastUpdated() int64   { return c.LastUpdated }
func (c *Collector) SetLastUpdated(ms int64) { c.LastUpdated = ms }

// Performer is a musician or band as referenced from an album or a
// collector's favorites list.
type Performer struct {
	ID          int
	Name        string
	Image       string
	Description string
}

// CollectorAlbum is one ownership entry on a collector record.
type CollectorAlbum struct {
	AlbumID int
	Price   int
	Status  string // "Active" or "Inactive"
}

// CollectorDetail is the full collector record as returned by the catalog,
// including ownership and favorites.
type CollectorDetail struct {
	Collector
	Albums             []CollectorAlbum
	FavoritePerformers []Performer
	Comments           []Comment
}

// Track is a single song on an album
type Track struct {
	ID       int
	Name     string
	Duration string // As published by the catalog, e.g. "5:05"
}

// Comment is a collector's note on an album
type Comment struct {
	ID          int
	Description string
	Rating      int // 1..5
	CollectorID int
}

// NewComment is the payload for posting a comment.
type NewComment struct {
	Description string `validate:"required|maxLen:500"`
	Rating      int    `validate:"required|min:1|max:5"`
	CollectorID int    `validate:"required|min:1"`
}

// Album represents a catalog album. Albums are not cached locally.
type Album struct {
	ID          int
	Name        string
	Cover       string
	ReleaseDate time.Time
	Description string
	Genre       string
	RecordLabel string
	Tracks      []Track
	Performers  []Performer
	Comments    []Comment
}

// Year returns the release year (0 if unknown)
func (a Album) Year() int {
	if a.ReleaseDate.IsZero() {
		return 0
	}
	return a.ReleaseDate.Year()
}

// AverageRating returns the mean comment rating, or 0 without comments
func (a Album) AverageRating() float64 {
	if len(a.Comments) == 0 {
		return 0
	}
	sum := 0
	for _, c := range a.Comments {
		sum += c.Rating
	}
	return float64(sum) / float64(len(a.Comments))
}

// EnrichedCollectorAlbum is an ownership entry decorated with catalog data.
type EnrichedCollectorAlbum struct {
	AlbumID int
	Name    string
	Cover   string
	Price   int
	Status  string
}

// IsPlaceholder reports whether the album was missing from the catalog.
func (a EnrichedCollectorAlbum) IsPlaceholder() bool {
	return a.Name == PlaceholderAlbumName(a.AlbumID) && a.Cover == ""
}

// PlaceholderAlbumName is the synthetic label for an album id that could
// not be resolved against the catalog.
func PlaceholderAlbumName(albumID int) string {
	return fmt.Sprintf("Album #%d", albumID)
}

// EnrichedCollector is the denormalized collector view. Built per request
// and never cached.
type EnrichedCollector struct {
	ID                 int
	Name               string
	Telephone          string
	Email              string
	Albums             []EnrichedCollectorAlbum
	FavoritePerformers []Performer
}

// TotalSpent sums the purchase price of every owned album
func (c EnrichedCollector) TotalSpent() int {
	total := 0
	for _, a := range c.Albums {
		total += a.Price
	}
	return total
}
