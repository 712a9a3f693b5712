// Package tmdb is a thin client for The Movie Database API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

// Client errors.
var (
	ErrUpstream        = errors.New("TMDB request failed")
	ErrInvalidMovieID  = errors.New("movie ID must be a positive integer")
	ErrEmptyQuery      = errors.New("search query cannot be empty")
	ErrUnknownCategory = errors.New("unknown movie category")
)

// maxAttempts is the maximum number of attempts for a single upstream call.
const maxAttempts = 3

// initialRetryDelay is the base delay for exponential backoff.
const initialRetryDelay = 500 * time.Millisecond

// maxResponseBytes bounds the size of a decoded upstream body.
const maxResponseBytes = 10 << 20

var tmdbRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tmdb_requests_total",
		Help: "Total number of upstream TMDB requests by outcome",
	},
	[]string{"endpoint", "outcome"},
)

// Category is a TMDB movie listing.
type Category string

// Supported listings.
const (
	CategoryLatest     Category = "latest"
	CategoryPopular    Category = "popular"
	CategoryTopRated   Category = "toprated"
	CategoryNowPlaying Category = "nowplaying"
	CategoryUpcoming   Category = "upcoming"
	CategorySearch     Category = "search"
)

var categoryPaths = map[Category]string{
	CategoryLatest:     "movie/latest",
	CategoryPopular:    "movie/popular",
	CategoryTopRated:   "movie/top_rated",
	CategoryNowPlaying: "movie/now_playing",
	CategoryUpcoming:   "movie/upcoming",
	CategorySearch:     "search/movie",
}

// ParseCategory maps a case-insensitive listing name to a Category.
func ParseCategory(name string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	_, ok := categoryPaths[c]
	return c, ok
}

// Client calls the TMDB v3 API.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	language   string
	http       *http.Client
	cache      *listCache
	retryDelay time.Duration
}

// NewClient creates a client for the API rooted at baseURL. A zero cacheTTL
// disables caching of movie listings.
func NewClient(
	baseURL, apiKey, language string,
	timeout, cacheTTL time.Duration,
) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing TMDB base URL: %w", err)
	}

	c := &Client{
		baseURL:    u,
		apiKey:     apiKey,
		language:   language,
		http:       &http.Client{Timeout: timeout},
		retryDelay: initialRetryDelay,
	}

	if cacheTTL > 0 {
		c.cache = newListCache(cacheTTL)
	}

	return c, nil
}

// Movies returns a movie listing. CategorySearch requires a non-blank query.
// The latest movie is returned as a single-element listing.
func (c *Client) Movies(
	ctx context.Context,
	category Category,
	query string,
) ([]model.TMDBMovieResult, error) {
	path, ok := categoryPaths[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	query = strings.TrimSpace(query)
	if category == CategorySearch && query == "" {
		return nil, ErrEmptyQuery
	}

	cacheKey := string(category) + "|" + query
	if c.cache != nil {
		if movies, ok := c.cache.get(cacheKey); ok {
			return movies, nil
		}
	}

	params := c.listParams(category, query)

	var movies []model.TMDBMovieResult
	if category == CategoryLatest {
		var latest model.TMDBMovieResult
		if err := c.getJSON(ctx, string(category), path, params, &latest); err != nil {
			return nil, err
		}
		movies = []model.TMDBMovieResult{latest}
	} else {
		var list model.TMDBMovieList
		if err := c.getJSON(ctx, string(category), path, params, &list); err != nil {
			return nil, err
		}
		movies = list.Results
	}

	if movies == nil {
		movies = []model.TMDBMovieResult{}
	}
	formatReleaseDates(movies)

	if c.cache != nil {
		c.cache.set(cacheKey, movies)
	}

	return movies, nil
}

// Movie returns the details of a single movie.
func (c *Client) Movie(ctx context.Context, movieID string) (*model.TMDBMovie, error) {
	id, err := strconv.Atoi(strings.TrimSpace(movieID))
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMovieID, movieID)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)

	var movie model.TMDBMovie
	if err := c.getJSON(ctx, "movie", "movie/"+strconv.Itoa(id), params, &movie); err != nil {
		return nil, err
	}

	return &movie, nil
}

// listParams builds the query string of a listing request.
func (c *Client) listParams(category Category, query string) url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	if category == CategoryLatest {
		return params
	}

	params.Set("page", "1")

	if category == CategorySearch {
		params.Set("query", query)
		params.Set("include_adult", "false")
	}

	return params
}

// getJSON fetches path and decodes the JSON body into out.
// Uses exponential backoff for transport errors and 5xx responses.
func (c *Client) getJSON(
	ctx context.Context,
	endpoint, path string,
	params url.Values,
	out any,
) error {
	ref := &url.URL{Path: path, RawQuery: params.Encode()}
	target := c.baseURL.ResolveReference(ref).String()

	var lastErr error
	delay := c.retryDelay

	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrUpstream, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		retry, err := c.fetch(ctx, target, out)
		if err == nil {
			tmdbRequestsTotal.WithLabelValues(endpoint, "success").Inc()
			return nil
		}

		lastErr = err
		if !retry {
			break
		}
	}

	tmdbRequestsTotal.WithLabelValues(endpoint, "error").Inc()

	return fmt.Errorf("%w: %w", ErrUpstream, lastErr)
}

// fetch performs a single GET. The returned bool reports whether the
// failure is worth retrying.
func (c *Client) fetch(ctx context.Context, target string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}

	return false, nil
}

// releaseDateLayout is how release dates are shown in the movie table.
const releaseDateLayout = "Monday, January 2, 2006"

// formatReleaseDates rewrites TMDB's YYYY-MM-DD release dates for display.
// Values that do not parse are left as they are.
func formatReleaseDates(movies []model.TMDBMovieResult) {
	for i := range movies {
		if d, err := time.Parse(time.DateOnly, movies[i].ReleaseDate); err == nil {
			movies[i].ReleaseDate = d.Format(releaseDateLayout)
		}
	}
}
