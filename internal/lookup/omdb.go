package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rpggio/syncus/internal/domain/media"
)

// MediaClient searches an OMDb style movie catalogue.
type MediaClient struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewMediaClient creates a client. An empty baseURL uses the public API.
func NewMediaClient(baseURL, key string, timeout time.Duration) *MediaClient {
	if baseURL == "" {
		baseURL = DefaultMediaURL
	}
	return &MediaClient{baseURL: baseURL, key: key, client: newHTTPClient(timeout)}
}

type omdbSearchResponse struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		IMDbID string `json:"imdbID"`
		Type   string `json:"Type"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Search implements media.Searcher. A query with no matches returns an empty
// result, not an error.
func (c *MediaClient) Search(ctx context.Context, query string) ([]media.Candidate, error) {
	if c.key == "" {
		return nil, ErrNotConfigured
	}
	var resp omdbSearchResponse
	q := url.Values{"apikey": {c.key}, "s": {query}}
	if err := getJSON(ctx, c.client, "omdb", c.baseURL, q, &resp); err != nil {
		return nil, err
	}
	if strings.EqualFold(resp.Response, "False") {
		if strings.Contains(strings.ToLower(resp.Error), "not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("omdb: %s", resp.Error)
	}

	out := make([]media.Candidate, 0, len(resp.Search))
	for _, r := range resp.Search {
		if r.IMDbID == "" {
			continue
		}
		out = append(out, media.Candidate{
			Title:      r.Title,
			ExternalID: r.IMDbID,
			Poster:     r.Poster,
			Year:       r.Year,
			Type:       r.Type,
		})
	}
	return out, nil
}
