package vinilos

// AlbumDTO is an album as served by GET /albums and GET /albums/{id}
type AlbumDTO struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Cover       string         `json:"cover"`
	ReleaseDate string         `json:"releaseDate"`
	Description string         `json:"description"`
	Genre       string         `json:"genre"`
	RecordLabel string         `json:"recordLabel"`
	Tracks      []TrackDTO     `json:"tracks,omitempty"`
	Performers  []PerformerDTO `json:"performers,omitempty"`
	Comments    []CommentDTO   `json:"comments,omitempty"`
}

// TrackDTO is one song of an album
type TrackDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Duration string `json:"duration"`
}

// PerformerDTO is a musician or band reference
type PerformerDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	BirthDate   string `json:"birthDate,omitempty"`
}

// MusicianDTO is a musician as served by GET /musicians
type MusicianDTO struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Image       string     `json:"image"`
	Description string     `json:"description"`
	BirthDate   string     `json:"birthDate"`
	Albums      []AlbumDTO `json:"albums,omitempty"`
}

// CollectorDTO is a collector as served by GET /collectors and GET /collectors/{id}
type CollectorDTO struct {
	ID                 int                 `json:"id"`
	Name               string              `json:"name"`
	Telephone          string              `json:"telephone"`
	Email              string              `json:"email"`
	Comments           []CommentDTO        `json:"comments,omitempty"`
	FavoritePerformers []PerformerDTO      `json:"favoritePerformers,omitempty"`
	CollectorAlbums    []CollectorAlbumDTO `json:"collectorAlbums,omitempty"`
}

// CollectorAlbumDTO is an ownership entry. Older servers only send the
// entry id; newer ones nest the album reference.
type CollectorAlbumDTO struct {
	ID      int       `json:"id"`
	AlbumID int       `json:"albumId,omitempty"`
	Price   int       `json:"price"`
	Status  string    `json:"status"`
	Album   *AlbumDTO `json:"album,omitempty"`
}

// CommentDTO is an album comment
type CommentDTO struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Rating      int    `json:"rating"`
	Collector   *IDRef `json:"collector,omitempty"`
}

// IDRef references another entity by id
type IDRef struct {
	ID int `json:"id"`
}

// NewCommentRequest is the body of POST /albums/{id}/comments
type NewCommentRequest struct {
	Description string `json:"description"`
	Rating      int    `json:"rating"`
	Collector   IDRef  `json:"collector"`
}

// ErrorResponse is the body the catalog sends with 4xx/5xx answers
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}
