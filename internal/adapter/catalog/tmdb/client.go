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

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"media-favorites/internal/core/domain/catalog"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	PlaceholderPoster   = "https://via.placeholder.com/500x750?text=No+Poster"

	maxCast = 10
)

// Config is injected by the caller; zero fields fall back to defaults.
type Config struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	Language     string
	Timeout      time.Duration
	// RPS caps outgoing requests per second.
	RPS float64
	// TrailerWorkers bounds concurrent video lookups during browse.
	TrailerWorkers int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = DefaultImageBaseURL
	}
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RPS <= 0 {
		c.RPS = 20
	}
	if c.TrailerWorkers <= 0 {
		c.TrailerWorkers = 5
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// Client talks to the TMDB v3 API.
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

type movieDTO struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	GenreIDs    []int   `json:"genre_ids"`
}

type pageDTO struct {
	Results []movieDTO `json:"results"`
}

type videosDTO struct {
	Results []catalog.Video `json:"results"`
}

type detailDTO struct {
	movieDTO
	Runtime int             `json:"runtime"`
	Tagline string          `json:"tagline"`
	Status  string          `json:"status"`
	Genres  []catalog.Genre `json:"genres"`
	Credits struct {
		Cast []catalog.CastMember `json:"cast"`
	} `json:"credits"`
	Videos videosDTO `json:"videos"`
}

type errorDTO struct {
	StatusMessage string `json:"status_message"`
}

// Popular returns popular movies that have a YouTube trailer, in provider order.
func (c *Client) Popular(ctx context.Context) ([]catalog.Movie, error) {
	var page pageDTO
	if err := c.get(ctx, "/movie/popular", nil, &page); err != nil {
		return nil, err
	}
	return c.withTrailers(ctx, page.Results)
}

// Search finds movies by title. A blank query falls back to Popular.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Popular(ctx)
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("include_adult", "false")

	var page pageDTO
	if err := c.get(ctx, "/search/movie", q, &page); err != nil {
		return nil, err
	}
	return c.withTrailers(ctx, page.Results)
}

// Details returns the full record of one movie including cast and videos.
func (c *Client) Details(ctx context.Context, id int64) (catalog.MovieDetail, error) {
	q := url.Values{}
	q.Set("append_to_response", "credits,videos")

	var dto detailDTO
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), q, &dto); err != nil {
		return catalog.MovieDetail{}, err
	}

	cast := dto.Credits.Cast
	if len(cast) > maxCast {
		cast = cast[:maxCast]
	}
	movie := c.toMovie(dto.movieDTO)
	movie.TrailerKey = trailerKey(dto.Videos.Results)

	return catalog.MovieDetail{
		Movie:   movie,
		Runtime: dto.Runtime,
		Tagline: dto.Tagline,
		Status:  dto.Status,
		Genres:  dto.Genres,
		Cast:    cast,
		Videos:  dto.Videos.Results,
	}, nil
}

// withTrailers looks up videos for every result and drops movies without a trailer.
// A movie whose videos are gone counts as having none; any other failed lookup fails the whole call.
func (c *Client) withTrailers(ctx context.Context, results []movieDTO) ([]catalog.Movie, error) {
	keys := make([]string, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.TrailerWorkers)
	for i, m := range results {
		g.Go(func() error {
			var videos videosDTO
			err := c.get(gctx, fmt.Sprintf("/movie/%d/videos", m.ID), nil, &videos)
			if errors.Is(err, catalog.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			keys[i] = trailerKey(videos.Results)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	movies := make([]catalog.Movie, 0, len(results))
	for i, m := range results {
		if keys[i] == "" {
			continue
		}
		movie := c.toMovie(m)
		movie.TrailerKey = keys[i]
		movies = append(movies, movie)
	}
	return movies, nil
}

func trailerKey(videos []catalog.Video) string {
	for _, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v.Key
		}
	}
	return ""
}

func (c *Client) toMovie(m movieDTO) catalog.Movie {
	poster := PlaceholderPoster
	if m.PosterPath != "" {
		poster = c.cfg.ImageBaseURL + m.PosterPath
	}
	return catalog.Movie{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  poster,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
		Overview:    m.Overview,
		GenreIDs:    m.GenreIDs,
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.cfg.APIKey)
	q.Set("language", c.cfg.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: tmdb: %v", catalog.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorDTO
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.StatusMessage
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: tmdb: %s", catalog.ErrNotFound, msg)
		}
		return fmt.Errorf("%w: tmdb: %s (status %d)", catalog.ErrUnavailable, msg, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: tmdb: decode: %v", catalog.ErrUnavailable, err)
	}
	return nil
}
