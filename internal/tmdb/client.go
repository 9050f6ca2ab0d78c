package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tmukas/filmvault/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "FilmVault/1.0"
)

// DefaultBaseURL is the production TMDB API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Options holds the discover query knobs.
type Options struct {
	BaseURL        string
	APIKey         string
	Language       string  // e.g. "en-US"
	MinVoteAverage float64 // vote_average.gte floor
	MinVoteCount   int     // vote_count.gte floor
	IncludeAdult   bool
}

// Client implements domain.MovieSource against the TMDB discover API.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new TMDB API client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// DiscoverPage fetches one page of the discover feed, newest releases first.
func (c *Client) DiscoverPage(ctx context.Context, page int) (domain.Page, error) {
	query := url.Values{}
	query.Set("api_key", c.opts.APIKey)
	query.Set("page", strconv.Itoa(page))
	query.Set("sort_by", "primary_release_date.desc")
	query.Set("vote_average.gte", strconv.FormatFloat(c.opts.MinVoteAverage, 'f', -1, 64))
	query.Set("vote_count.gte", strconv.Itoa(c.opts.MinVoteCount))
	query.Set("include_adult", strconv.FormatBool(c.opts.IncludeAdult))
	query.Set("include_video", "false")
	if c.opts.Language != "" {
		query.Set("language", c.opts.Language)
	}

	body, err := c.doRequest(ctx, "/discover/movie", query)
	if err != nil {
		return domain.Page{}, err
	}

	var resp moviesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("tmdb parse error", "error", err, "bodyLen", len(body))
		return domain.Page{}, fmt.Errorf("%w: %v", domain.ErrProtocol, err)
	}

	totalPages := resp.TotalPages
	if totalPages <= 0 {
		totalPages = 1
	}
	return domain.Page{
		Movies:     mapMovies(resp.Results),
		TotalPages: totalPages,
	}, nil
}

// doRequest performs a GET against the API and classifies failures into the
// domain error kinds. Context cancellation is passed through untouched.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.opts.BaseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("tmdb request", "path", path, "page", query.Get("page"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("tmdb request failed", "error", err)
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrProtocol, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("tmdb request error", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProtocol, resp.StatusCode)
	}
	return body, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
}
