package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/vinilo/internal/adapter"
	"github.com/mmcdole/vinilo/internal/adapter/source/vinilos"
	"github.com/mmcdole/vinilo/internal/domain"
)

// CatalogSource is the unified interface a catalog backend must implement.
type CatalogSource interface {
	domain.AlbumRepository     // Albums: ListAlbums, GetAlbum
	domain.MusicianRepository  // Musicians: ListMusicians, GetMusician
	domain.CollectorRepository // Collectors: ListCollectors, GetCollector
	domain.CommentRepository   // Comments: PostComment
}

// NewClientFromConfig creates a CatalogSource from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (CatalogSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Server.URL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	return vinilos.NewClient(cfg.Server.URL, cfg.Server.Timeout, logger), nil
}
