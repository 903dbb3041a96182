package vinilos

import (
	"time"

	"github.com/mmcdole/vinilo/internal/domain"
)

// parseDate accepts the catalog's ISO-8601 timestamps; unknown formats map to the zero time
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// MapAlbums converts album DTOs to domain albums
func MapAlbums(dtos []AlbumDTO) []*domain.Album {
	albums := make([]*domain.Album, 0, len(dtos))
	for _, d := range dtos {
		albums = append(albums, MapAlbum(d))
	}
	return albums
}

// MapAlbum converts a single album DTO
func MapAlbum(d AlbumDTO) *domain.Album {
	album := &domain.Album{
		ID:          d.ID,
		Name:        d.Name,
		Cover:       d.Cover,
		ReleaseDate: parseDate(d.ReleaseDate),
		Description: d.Description,
		Genre:       d.Genre,
		RecordLabel: d.RecordLabel,
		Performers:  mapPerformers(d.Performers),
		Comments:    mapComments(d.Comments),
	}
	for _, t := range d.Tracks {
		album.Tracks = append(album.Tracks, domain.Track{ID: t.ID, Name: t.Name, Duration: t.Duration})
	}
	return album
}

// MapMusicians converts musician DTOs to cacheable domain records
func MapMusicians(dtos []MusicianDTO) []*domain.Musician {
	musicians := make([]*domain.Musician, 0, len(dtos))
	for _, d := range dtos {
		musicians = append(musicians, MapMusician(d))
	}
	return musicians
}

// MapMusician converts a single musician DTO
func MapMusician(d MusicianDTO) *domain.Musician {
	return &domain.Musician{
		ID:          d.ID,
		Name:        d.Name,
		Image:       d.Image,
		Description: d.Description,
		BirthDate:   parseDate(d.BirthDate),
		AlbumCount:  len(d.Albums),
	}
}

// MapCollectors converts collector DTOs to cacheable domain records
func MapCollectors(dtos []CollectorDTO) []*domain.Collector {
	collectors := make([]*domain.Collector, 0, len(dtos))
	for _, d := range dtos {
		c := mapCollector(d)
		collectors = append(collectors, &c)
	}
	return collectors
}

func mapCollector(d CollectorDTO) domain.Collector {
	return domain.Collector{
		ID:         d.ID,
		Name:       d.Name,
		Telephone:  d.Telephone,
		Email:      d.Email,
		AlbumCount: len(d.CollectorAlbums),
	}
}

// MapCollectorDetail converts a collector DTO including ownership and favorites
func MapCollectorDetail(d CollectorDTO) *domain.CollectorDetail {
	detail := &domain.CollectorDetail{
		Collector:          mapCollector(d),
		FavoritePerformers: mapPerformers(d.FavoritePerformers),
		Comments:           mapComments(d.Comments),
	}
	for _, ca := range d.CollectorAlbums {
		detail.Albums = append(detail.Albums, domain.CollectorAlbum{
			AlbumID: collectorAlbumID(ca),
			Price:   ca.Price,
			Status:  ca.Status,
		})
	}
	return detail
}

// collectorAlbumID resolves the album an ownership entry points to
func collectorAlbumID(ca CollectorAlbumDTO) int {
	switch {
	case ca.Album != nil && ca.Album.ID != 0:
		return ca.Album.ID
	case ca.AlbumID != 0:
		return ca.AlbumID
	default:
		return ca.ID
	}
}

func mapPerformers(dtos []PerformerDTO) []domain.Performer {
	if len(dtos) == 0 {
		return nil
	}
	performers := make([]domain.Performer, 0, len(dtos))
	for _, p := range dtos {
		performers = append(performers, domain.Performer{
			ID:          p.ID,
			Name:        p.Name,
			Image:       p.Image,
			Description: p.Description,
		})
	}
	return performers
}

func mapComments(dtos []CommentDTO) []domain.Comment {
	if len(dtos) == 0 {
		return nil
	}
	comments := make([]domain.Comment, 0, len(dtos))
	for _, c := range dtos {
		comments = append(comments, MapComment(c))
	}
	return comments
}

// MapComment converts a comment DTO
func MapComment(c CommentDTO) domain.Comment {
	comment := domain.Comment{ID: c.ID, Description: c.Description, Rating: c.Rating}
	if c.Collector != nil {
		comment.CollectorID = c.Collector.ID
	}
	return comment
}
