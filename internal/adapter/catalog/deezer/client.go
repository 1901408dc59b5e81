package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"media-favorites/internal/core/domain/catalog"
)

const (
	DefaultBaseURL = "https://api.deezer.com"

	pageLimit = "20"
)

// Config is injected by the caller; zero fields fall back to defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	// Deezer allows 50 requests per 5 seconds.
	if c.RPS <= 0 {
		c.RPS = 10
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// Client talks to the public Deezer API. No key is required.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), int(cfg.RPS)+1),
	}
}

// apiError is how Deezer reports failures, usually with a 200 status.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type listDTO struct {
	Data  []catalog.Track `json:"data"`
	Error *apiError       `json:"error"`
}

type trackDTO struct {
	catalog.Track
	Error *apiError `json:"error"`
}

// Chart returns the current top tracks.
func (c *Client) Chart(ctx context.Context) ([]catalog.Track, error) {
	q := url.Values{}
	q.Set("limit", pageLimit)

	var list listDTO
	if err := c.get(ctx, "/chart/0/tracks", q, &list); err != nil {
		return nil, err
	}
	if err := list.Error.err(); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// Search finds tracks by free text. A blank query falls back to Chart.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Chart(ctx)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", pageLimit)

	var list listDTO
	if err := c.get(ctx, "/search", q, &list); err != nil {
		return nil, err
	}
	if err := list.Error.err(); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// Track returns one track by id.
func (c *Client) Track(ctx context.Context, id int64) (catalog.Track, error) {
	var dto trackDTO
	if err := c.get(ctx, "/track/"+strconv.FormatInt(id, 10), nil, &dto); err != nil {
		return catalog.Track{}, err
	}
	if err := dto.Error.err(); err != nil {
		return catalog.Track{}, err
	}
	return dto.Track, nil
}

// codeNoData is Deezer's DataException code for an id it does not know.
const codeNoData = 800

func (e *apiError) err() error {
	if e == nil {
		return nil
	}
	if e.Code == codeNoData {
		return fmt.Errorf("%w: deezer: %s", catalog.ErrNotFound, e.Message)
	}
	return fmt.Errorf("%w: deezer: %s (%s, code %d)", catalog.ErrUnavailable, e.Message, e.Type, e.Code)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}

	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: deezer: %v", catalog.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: deezer: %s", catalog.ErrNotFound, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: deezer: %s", catalog.ErrUnavailable, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: deezer: decode: %v", catalog.ErrUnavailable, err)
	}
	return nil
}
