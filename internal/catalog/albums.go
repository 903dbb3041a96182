package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gookit/validate"
	"github.com/mmcdole/vinilo/internal/domain"
)

// Albums reads the album catalog. Albums are not cached, every call hits the network.
type Albums struct {
	repo   domain.AlbumRepository
	logger *slog.Logger
}

func NewAlbums(repo domain.AlbumRepository, logger *slog.Logger) *Albums {
	if logger == nil {
		logger = slog.Default()
	}
	return &Albums{repo: repo, logger: logger}
}

// List returns every album ordered by id
func (a *Albums) List(ctx context.Context) ([]*domain.Album, error) {
	albums, err := a.repo.ListAlbums(ctx)
	if err != nil {
		a.logger.Error("failed to fetch albums", "error", err)
		return nil, err
	}
	slices.SortFunc(albums, func(x, y *domain.Album) int { return x.ID - y.ID })
	a.logger.Debug("fetched albums", "count", len(albums))
	return albums, nil
}

// Get returns one album with tracks, performers and comments
func (a *Albums) Get(ctx context.Context, id int) (*domain.Album, error) {
	album, err := a.repo.GetAlbum(ctx, id)
	if err != nil {
		a.logger.Error("failed to fetch album", "albumID", id, "error", err)
		return nil, err
	}
	return album, nil
}

// Comments posts album comments on behalf of a collector.
type Comments struct {
	repo   domain.CommentRepository
	logger *slog.Logger
}

func NewComments(repo domain.CommentRepository, logger *slog.Logger) *Comments {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comments{repo: repo, logger: logger}
}

// Post validates and sends a comment. Only collectors may comment.
func (c *Comments) Post(ctx context.Context, role domain.Role, albumID int, comment domain.NewComment) (*domain.Comment, error) {
	if !role.CanComment() {
		return nil, fmt.Errorf("%s cannot comment: %w", role, domain.ErrForbidden)
	}

	comment.Description = strings.TrimSpace(comment.Description)
	if err := ValidateComment(comment); err != nil {
		return nil, err
	}

	created, err := c.repo.PostComment(ctx, albumID, comment)
	if err != nil {
		c.logger.Error("failed to post comment", "albumID", albumID, "error", err)
		return nil, err
	}
	c.logger.Info("comment posted", "albumID", albumID, "commentID", created.ID)
	return created, nil
}

// ValidateComment checks a comment before it is sent
func ValidateComment(comment domain.NewComment) error {
	v := validate.Struct(&comment)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidComment, v.Errors.One())
	}
	return nil
}
