// Package app ties the catalog providers, the favorites backend, the session and the
// local favorite mirrors together into the operations the terminal client exposes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"media-favorites/internal/client/backend"
	"media-favorites/internal/client/mirror"
	"media-favorites/internal/client/session"
	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/domain/catalog"
	"media-favorites/internal/core/domain/favorites"
)

// ErrSignedOut is returned by operations that need a session when none is stored.
var ErrSignedOut = errors.New("not signed in")

type MovieCatalog interface {
	Popular(ctx context.Context) ([]catalog.Movie, error)
	Search(ctx context.Context, query string) ([]catalog.Movie, error)
	Details(ctx context.Context, id int64) (catalog.MovieDetail, error)
}

type TrackCatalog interface {
	Chart(ctx context.Context) ([]catalog.Track, error)
	Search(ctx context.Context, query string) ([]catalog.Track, error)
	Track(ctx context.Context, id int64) (catalog.Track, error)
}

// Backend is the favorites REST API as seen by the client.
type Backend interface {
	SignUp(ctx context.Context, username, email, password string) (auth.User, error)
	Login(ctx context.Context, email, password string) (string, auth.User, error)
	Profile(ctx context.Context, token string) (backend.Profile, error)
	UpdateProfile(ctx context.Context, token, username, email string) (auth.User, error)
	ChangePassword(ctx context.Context, token, current, next string) error
	Favorites(ctx context.Context, token string) (favorites.Collections, error)
	AddMovie(ctx context.Context, token string, entry favorites.MovieEntry) ([]favorites.MovieEntry, error)
	RemoveMovie(ctx context.Context, token, movieID string) ([]favorites.MovieEntry, error)
	AddTrack(ctx context.Context, token string, entry favorites.TrackEntry) ([]favorites.TrackEntry, error)
	RemoveTrack(ctx context.Context, token, trackID string) ([]favorites.TrackEntry, error)
}

// MovieView is a browse result decorated with its favorite state.
type MovieView struct {
	catalog.Movie
	Favorite bool
}

type TrackView struct {
	catalog.Track
	Favorite bool
}

// Change reports the outcome of a local favorite change.
// SyncErr is set when the local change stuck but the backend push did not.
type Change struct {
	Favorite bool
	Synced   bool
	SyncErr  error
}

// SyncReport counts what a reconciliation moved in each direction.
type SyncReport struct {
	Pushed int
	Pulled int
}

type App struct {
	movies    MovieCatalog
	tracks    TrackCatalog
	backend   Backend
	session   *session.Session
	favMovies *mirror.Mirror[catalog.Movie]
	favTracks *mirror.Mirror[catalog.Track]
	logger    *slog.Logger
}

func New(
	movies MovieCatalog,
	tracks TrackCatalog,
	be Backend,
	sess *session.Session,
	favMovies *mirror.Mirror[catalog.Movie],
	favTracks *mirror.Mirror[catalog.Track],
	logger *slog.Logger,
) *App {
	return &App{
		movies:    movies,
		tracks:    tracks,
		backend:   be,
		session:   sess,
		favMovies: favMovies,
		favTracks: favTracks,
		logger:    logger,
	}
}

// Start loads both mirrors from local storage.
func (a *App) Start(ctx context.Context) error {
	if err := a.favMovies.Load(ctx); err != nil {
		return err
	}
	if err := a.favTracks.Load(ctx); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "favorites loaded", "movies", a.favMovies.Len(), "tracks", a.favTracks.Len())
	return nil
}

// Counts reports how many movies and tracks the local mirror holds.
func (a *App) Counts() (movies, tracks int) {
	return a.favMovies.Len(), a.favTracks.Len()
}

func (a *App) BrowseMovies(ctx context.Context, query string) ([]MovieView, error) {
	movies, err := a.movies.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	views := make([]MovieView, len(movies))
	for i, m := range movies {
		views[i] = MovieView{Movie: m, Favorite: a.favMovies.Contains(m.FavoriteKey())}
	}
	return views, nil
}

func (a *App) BrowseTracks(ctx context.Context, query string) ([]TrackView, error) {
	tracks, err := a.tracks.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	views := make([]TrackView, len(tracks))
	for i, t := range tracks {
		views[i] = TrackView{Track: t, Favorite: a.favTracks.Contains(t.FavoriteKey())}
	}
	return views, nil
}

func (a *App) MovieDetails(ctx context.Context, id int64) (catalog.MovieDetail, bool, error) {
	d, err := a.movies.Details(ctx, id)
	if err != nil {
		return catalog.MovieDetail{}, false, err
	}
	return d, a.favMovies.Contains(d.FavoriteKey()), nil
}

func (a *App) TrackDetails(ctx context.Context, id int64) (catalog.Track, bool, error) {
	t, err := a.tracks.Track(ctx, id)
	if err != nil {
		return catalog.Track{}, false, err
	}
	return t, a.favTracks.Contains(t.FavoriteKey()), nil
}

// ToggleMovie flips the movie in the local mirror and, when signed in, mirrors
// the change on the backend.
func (a *App) ToggleMovie(ctx context.Context, m catalog.Movie) (Change, error) {
	added, err := a.favMovies.Toggle(ctx, m)
	if err != nil {
		return Change{}, err
	}
	c := Change{Favorite: added}
	c.Synced, c.SyncErr = a.push(ctx, func(token string) error {
		if added {
			_, err := a.backend.AddMovie(ctx, token, m.Entry())
			return err
		}
		_, err := a.backend.RemoveMovie(ctx, token, m.FavoriteKey())
		return err
	})
	return c, nil
}

func (a *App) ToggleTrack(ctx context.Context, t catalog.Track) (Change, error) {
	added, err := a.favTracks.Toggle(ctx, t)
	if err != nil {
		return Change{}, err
	}
	c := Change{Favorite: added}
	c.Synced, c.SyncErr = a.push(ctx, func(token string) error {
		if added {
			_, err := a.backend.AddTrack(ctx, token, t.Entry())
			return err
		}
		_, err := a.backend.RemoveTrack(ctx, token, t.FavoriteKey())
		return err
	})
	return c, nil
}

// Favorites returns both mirrors in insertion order.
func (a *App) Favorites() ([]catalog.Movie, []catalog.Track) {
	return a.favMovies.Items(), a.favTracks.Items()
}

// RemoveFavorite drops an item from the favorites screen by kind and id.
func (a *App) RemoveFavorite(ctx context.Context, kind favorites.Kind, id string) (Change, error) {
	if !kind.Valid() {
		return Change{}, fmt.Errorf("%w: unknown kind %q", favorites.ErrValidation, kind)
	}
	id = favorites.NormalizeKey(id)

	var (
		removed bool
		err     error
		remote  func(token string) error
	)
	if kind == favorites.KindMovies {
		removed, err = a.favMovies.Remove(ctx, id)
		remote = func(token string) error { _, err := a.backend.RemoveMovie(ctx, token, id); return err }
	} else {
		removed, err = a.favTracks.Remove(ctx, id)
		remote = func(token string) error { _, err := a.backend.RemoveTrack(ctx, token, id); return err }
	}
	if err != nil {
		return Change{}, err
	}
	if !removed {
		return Change{}, fmt.Errorf("%w: %s %s is not in your favorites", favorites.ErrValidation, kind, id)
	}

	var c Change
	c.Synced, c.SyncErr = a.push(ctx, remote)
	return c, nil
}

// push runs fn with the stored token. Without a session nothing is sent.
// A duplicate add counts as synced. An auth failure signs the user out.
func (a *App) push(ctx context.Context, fn func(token string) error) (bool, error) {
	token, err := a.session.Token(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	err = fn(token)
	switch {
	case err == nil, errors.Is(err, favorites.ErrConflict):
		return true, nil
	case errors.Is(err, auth.ErrUnauthorized):
		a.signOut(ctx)
	}
	a.logger.WarnContext(ctx, "favorite push failed", "error", err)
	return false, err
}

func (a *App) SignUp(ctx context.Context, username, email, password string) (auth.User, error) {
	return a.backend.SignUp(ctx, username, email, password)
}

// Login stores the session and reconciles the local mirrors with the server.
// A failed sync does not undo the login; it is returned alongside the user.
func (a *App) Login(ctx context.Context, email, password string) (auth.User, SyncReport, error) {
	token, user, err := a.backend.Login(ctx, email, password)
	if err != nil {
		return auth.User{}, SyncReport{}, err
	}
	if err := a.session.Save(ctx, token, user); err != nil {
		return auth.User{}, SyncReport{}, fmt.Errorf("failed to store session: %w", err)
	}
	a.logger.InfoContext(ctx, "signed in", "user_id", user.ID)

	report, err := a.Sync(ctx)
	return user, report, err
}

// Logout forgets the session. Local favorites stay.
func (a *App) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}

// CachedUser returns the profile snapshot stored at login, if any.
func (a *App) CachedUser(ctx context.Context) (auth.User, bool, error) {
	return a.session.User(ctx)
}

// Profile fetches the profile and refreshes the cached snapshot.
func (a *App) Profile(ctx context.Context) (backend.Profile, error) {
	token, err := a.requireToken(ctx)
	if err != nil {
		return backend.Profile{}, err
	}
	p, err := a.backend.Profile(ctx, token)
	if err != nil {
		return backend.Profile{}, a.authFailure(ctx, err)
	}
	if err := a.session.SetUser(ctx, p.User()); err != nil {
		a.logger.WarnContext(ctx, "failed to cache profile", "error", err)
	}
	return p, nil
}

func (a *App) UpdateProfile(ctx context.Context, username, email string) (auth.User, error) {
	token, err := a.requireToken(ctx)
	if err != nil {
		return auth.User{}, err
	}
	user, err := a.backend.UpdateProfile(ctx, token, username, email)
	if err != nil {
		return auth.User{}, a.authFailure(ctx, err)
	}
	if err := a.session.SetUser(ctx, user); err != nil {
		a.logger.WarnContext(ctx, "failed to cache profile", "error", err)
	}
	return user, nil
}

func (a *App) ChangePassword(ctx context.Context, current, next string) error {
	token, err := a.requireToken(ctx)
	if err != nil {
		return err
	}
	return a.authFailure(ctx, a.backend.ChangePassword(ctx, token, current, next))
}

// Sync merges the local mirrors with the server collections: items only held
// locally are pushed, items only held by the server are pulled in, and each mirror
// is rewritten at most once.
func (a *App) Sync(ctx context.Context) (SyncReport, error) {
	token, err := a.requireToken(ctx)
	if err != nil {
		return SyncReport{}, err
	}
	remote, err := a.backend.Favorites(ctx, token)
	if err != nil {
		return SyncReport{}, a.authFailure(ctx, err)
	}

	var report SyncReport

	movies, err := reconcile(ctx, a, a.favMovies, remote.Movies,
		func(m catalog.Movie) error { _, err := a.backend.AddMovie(ctx, token, m.Entry()); return err },
		catalog.MovieFromEntry,
		func(e favorites.MovieEntry) string { return e.MovieID },
	)
	report.Pushed += movies.Pushed
	report.Pulled += movies.Pulled
	if err != nil {
		return report, err
	}

	tracks, err := reconcile(ctx, a, a.favTracks, remote.Tracks,
		func(t catalog.Track) error { _, err := a.backend.AddTrack(ctx, token, t.Entry()); return err },
		catalog.TrackFromEntry,
		func(e favorites.TrackEntry) string { return e.TrackID },
	)
	report.Pushed += tracks.Pushed
	report.Pulled += tracks.Pulled
	if err != nil {
		return report, err
	}

	a.logger.InfoContext(ctx, "favorites synced", "pushed", report.Pushed, "pulled", report.Pulled,
		"movies", a.favMovies.Len(), "tracks", a.favTracks.Len())
	return report, nil
}

func reconcile[T catalog.Item, E any](
	ctx context.Context,
	a *App,
	m *mirror.Mirror[T],
	remote []E,
	push func(T) error,
	fromEntry func(E) (T, error),
	keyOf func(E) string,
) (SyncReport, error) {
	var report SyncReport

	onServer := make(map[string]struct{}, len(remote))
	for _, e := range remote {
		onServer[favorites.NormalizeKey(keyOf(e))] = struct{}{}
	}

	local := m.Items()
	for _, item := range local {
		if _, ok := onServer[item.FavoriteKey()]; ok {
			continue
		}
		if err := push(item); err != nil && !errors.Is(err, favorites.ErrConflict) {
			return report, a.authFailure(ctx, err)
		}
		report.Pushed++
	}

	merged := local
	for _, e := range remote {
		key := favorites.NormalizeKey(keyOf(e))
		if m.Contains(key) {
			continue
		}
		item, err := fromEntry(e)
		if err != nil {
			a.logger.WarnContext(ctx, "skipping server favorite with invalid id", "id", keyOf(e), "error", err)
			continue
		}
		merged = append(merged, item)
		report.Pulled++
	}
	if report.Pulled == 0 {
		return report, nil
	}
	return report, m.Replace(ctx, merged)
}

func (a *App) requireToken(ctx context.Context) (string, error) {
	token, err := a.session.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrSignedOut
	}
	return token, nil
}

// authFailure signs the user out when err says the token is no longer valid.
func (a *App) authFailure(ctx context.Context, err error) error {
	if errors.Is(err, auth.ErrUnauthorized) {
		a.signOut(ctx)
	}
	return err
}

func (a *App) signOut(ctx context.Context) {
	if err := a.session.Clear(ctx); err != nil {
		a.logger.WarnContext(ctx, "failed to clear session", "error", err)
	}
}
