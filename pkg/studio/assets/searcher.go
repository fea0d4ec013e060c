// Package assets binds an illustrative animated image to each timeline segment.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/himanishpuri/studiokit/pkg/models"
)

// Searcher returns asset URLs for a phrase, best match first.
type Searcher interface {
	Search(ctx context.Context, phrase string) ([]string, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, phrase string) ([]string, error)

func (f SearcherFunc) Search(ctx context.Context, phrase string) ([]string, error) {
	return f(ctx, phrase)
}

const DefaultGiphyURL = "https://api.giphy.com/v1/gifs/search"

// Giphy searches the Giphy GIF API.
type Giphy struct {
	apiKey   string
	endpoint string
	rating   string
	limit    int
	http     *http.Client
}

type GiphyOption func(*Giphy)

func WithGiphyEndpoint(u string) GiphyOption {
	return func(g *Giphy) { g.endpoint = u }
}

func WithGiphyHTTPClient(c *http.Client) GiphyOption {
	return func(g *Giphy) { g.http = c }
}

// WithGiphyLimit sets how many results are requested per search.
func WithGiphyLimit(n int) GiphyOption {
	return func(g *Giphy) {
		if n > 0 {
			g.limit = n
		}
	}
}

func NewGiphy(apiKey string, opts ...GiphyOption) *Giphy {
	g := &Giphy{
		apiKey:   apiKey,
		endpoint: DefaultGiphyURL,
		rating:   "g",
		limit:    1,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type giphyResponse struct {
	Data []struct {
		ID     string `json:"id"`
		Images struct {
			Original struct {
				URL string `json:"url"`
			} `json:"original"`
		} `json:"images"`
	} `json:"data"`
}

func (g *Giphy) Search(ctx context.Context, phrase string) ([]string, error) {
	params := url.Values{}
	params.Set("api_key", g.apiKey)
	params.Set("q", phrase)
	params.Set("limit", fmt.Sprint(g.limit))
	params.Set("rating", g.rating)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("giphy request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("giphy search %q: %v: %w", phrase, err, models.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("giphy search %q: status %d: %w", phrase, resp.StatusCode, models.ErrTransport)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("giphy read: %v: %w", err, models.ErrTransport)
	}

	var gr giphyResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("giphy decode: %v: %w", err, models.ErrTransport)
	}

	urls := make([]string, 0, len(gr.Data))
	for _, d := range gr.Data {
		if u := strings.TrimSpace(d.Images.Original.URL); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
