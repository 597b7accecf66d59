package lookup

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rpggio/syncus/internal/domain/stream"
)

// LinkPreviewClient fetches page metadata from a linkpreview.net style API.
type LinkPreviewClient struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewLinkPreviewClient creates a client. An empty baseURL uses the public API.
func NewLinkPreviewClient(baseURL, key string, timeout time.Duration) *LinkPreviewClient {
	if baseURL == "" {
		baseURL = DefaultLinkPreviewURL
	}
	return &LinkPreviewClient{baseURL: baseURL, key: key, client: newHTTPClient(timeout)}
}

type linkPreviewResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
}

// Preview implements stream.LinkPreviewer.
func (c *LinkPreviewClient) Preview(ctx context.Context, rawURL string) (*stream.Preview, error) {
	if c.key == "" {
		return nil, ErrNotConfigured
	}
	var resp linkPreviewResponse
	q := url.Values{"key": {c.key}, "q": {rawURL}}
	if err := getJSON(ctx, c.client, "linkpreview", c.baseURL, q, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Title) == "" && strings.TrimSpace(resp.Description) == "" && resp.Image == "" {
		return nil, nil
	}
	link := resp.URL
	if link == "" {
		link = rawURL
	}
	return &stream.Preview{
		URL:         link,
		Title:       strings.TrimSpace(resp.Title),
		Description: strings.TrimSpace(resp.Description),
		Image:       resp.Image,
	}, nil
}
