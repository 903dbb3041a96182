package vinilos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzhttp"
	"github.com/mmcdole/vinilo/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is kept for messages
	maxErrorBody = 512
)

// Client implements domain.CatalogRepository against the Vinilos REST API.
// Failures surface as *domain.RemoteError; there are no retries here,
// callers decide when to try again.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new catalog API client
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// doRequest performs an HTTP request and decodes a JSON answer into out
func (c *Client) doRequest(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path
	reqURL := c.baseURL + path

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("catalog request", "method", method, "url", reqURL)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("catalog request failed", "op", op, "error", err)
		return &domain.RemoteError{Op: op, Message: "request failed", Cause: errors.Join(domain.ErrServerOffline, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RemoteError{Op: op, Status: resp.StatusCode, Message: "failed to read response", Cause: errors.Join(domain.ErrServerOffline, err)}
	}

	c.logger.Debug("catalog response", "op", op, "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &domain.RemoteError{Op: op, Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
		if resp.StatusCode == http.StatusNotFound {
			remoteErr.Cause = domain.ErrNotFound
		}
		c.logger.Debug("catalog request error", "op", op, "status", resp.StatusCode, "message", remoteErr.Message)
		return remoteErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.RemoteError{Op: op, Status: resp.StatusCode, Message: "failed to parse response", Cause: errors.Join(domain.ErrMalformedResponse, err)}
	}
	return nil
}

// errorMessage extracts the server's message from an error body
func errorMessage(data []byte, fallback string) string {
	var er ErrorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Message != "" {
		return er.Message
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return fallback
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}

// ListAlbums returns the full album catalog
func (c *Client) ListAlbums(ctx context.Context) ([]*domain.Album, error) {
	var dtos []AlbumDTO
	if err := c.doRequest(ctx, http.MethodGet, "/albums", nil, &dtos); err != nil {
		return nil, err
	}
	return MapAlbums(dtos), nil
}

// GetAlbum returns a single album with tracks, performers and comments
func (c *Client) GetAlbum(ctx context.Context, id int) (*domain.Album, error) {
	var dto AlbumDTO
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/albums/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	return MapAlbum(dto), nil
}

// ListMusicians returns every musician
func (c *Client) ListMusicians(ctx context.Context) ([]*domain.Musician, error) {
	var dtos []MusicianDTO
	if err := c.doRequest(ctx, http.MethodGet, "/musicians", nil, &dtos); err != nil {
		return nil, err
	}
	return MapMusicians(dtos), nil
}

// GetMusician returns a single musician
func (c *Client) GetMusician(ctx context.Context, id int) (*domain.Musician, error) {
	var dto MusicianDTO
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/musicians/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	return MapMusician(dto), nil
}

// ListCollectors returns every collector
func (c *Client) ListCollectors(ctx context.Context) ([]*domain.Collector, error) {
	var dtos []CollectorDTO
	if err := c.doRequest(ctx, http.MethodGet, "/collectors", nil, &dtos); err != nil {
		return nil, err
	}
	return MapCollectors(dtos), nil
}

// GetCollector returns a collector with album ownership and favorite performers
func (c *Client) GetCollector(ctx context.Context, id int) (*domain.CollectorDetail, error) {
	var dto CollectorDTO
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/collectors/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	return MapCollectorDetail(dto), nil
}

// PostComment adds a comment to an album
func (c *Client) PostComment(ctx context.Context, albumID int, comment domain.NewComment) (*domain.Comment, error) {
	req := NewCommentRequest{
		Description: comment.Description,
		Rating:      comment.Rating,
		Collector:   IDRef{ID: comment.CollectorID},
	}
	var dto CommentDTO
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/albums/%d/comments", albumID), req, &dto); err != nil {
		return nil, err
	}
	created := MapComment(dto)
	if created.CollectorID == 0 {
		created.CollectorID = comment.CollectorID
	}
	return &created, nil
}
