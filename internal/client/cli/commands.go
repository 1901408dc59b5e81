package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"media-favorites/internal/client/app"
	"media-favorites/internal/core/domain/favorites"
)

func (c *CLI) handleMovies(ctx context.Context, args []string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	movies, err := c.app.BrowseMovies(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	c.lastMovies = movies
	if len(movies) == 0 {
		fmt.Fprintln(c.out, "No movies found.")
		return nil
	}
	for i, m := range movies {
		fmt.Fprintf(c.out, "%3d. %s %s (%s) %.1f\n", i+1, star(m.Favorite), m.Title, year(m.ReleaseDate), m.VoteAverage)
	}
	return nil
}

func (c *CLI) handleMusic(ctx context.Context, args []string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tracks, err := c.app.BrowseTracks(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	c.lastTracks = tracks
	if len(tracks) == 0 {
		fmt.Fprintln(c.out, "No tracks found.")
		return nil
	}
	for i, t := range tracks {
		fmt.Fprintf(c.out, "%3d. %s %s - %s\n", i+1, star(t.Favorite), t.Title, t.Artist.Name)
	}
	return nil
}

func (c *CLI) handleMovie(ctx context.Context, args []string) error {
	m, err := pick(args, c.lastMovies, "movie <n>")
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	d, fav, err := c.app.MovieDetails(ctx, m.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s %s (%s)\n", star(fav), d.Title, year(d.ReleaseDate))
	if d.Tagline != "" {
		fmt.Fprintf(c.out, "  %q\n", d.Tagline)
	}
	fmt.Fprintf(c.out, "  Rating: %.1f  Runtime: %d min  Status: %s\n", d.VoteAverage, d.Runtime, d.Status)
	if len(d.Genres) > 0 {
		names := make([]string, len(d.Genres))
		for i, g := range d.Genres {
			names[i] = g.Name
		}
		fmt.Fprintf(c.out, "  Genres: %s\n", strings.Join(names, ", "))
	}
	if d.Overview != "" {
		fmt.Fprintf(c.out, "  %s\n", d.Overview)
	}
	for _, cm := range d.Cast {
		fmt.Fprintf(c.out, "  - %s as %s\n", cm.Name, cm.Character)
	}
	if d.TrailerKey != "" {
		fmt.Fprintf(c.out, "  Trailer: https://www.youtube.com/watch?v=%s\n", d.TrailerKey)
	}
	return nil
}

func (c *CLI) handleTrack(ctx context.Context, args []string) error {
	t, err := pick(args, c.lastTracks, "track <n>")
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tr, fav, err := c.app.TrackDetails(ctx, t.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s %s - %s\n", star(fav), tr.Title, tr.Artist.Name)
	fmt.Fprintf(c.out, "  Album: %s  Duration: %d:%02d\n", tr.Album.Title, tr.Duration/60, tr.Duration%60)
	if tr.Preview != "" {
		fmt.Fprintf(c.out, "  Preview: %s\n", tr.Preview)
	}
	if tr.Link != "" {
		fmt.Fprintf(c.out, "  Link: %s\n", tr.Link)
	}
	return nil
}

func (c *CLI) handleFav(ctx context.Context, args []string) error {
	const usage = "fav movie|track <n>"
	if len(args) != 2 {
		return usageError(usage)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var (
		title  string
		change app.Change
	)
	switch args[0] {
	case "movie":
		m, err := pick(args[1:], c.lastMovies, usage)
		if err != nil {
			return err
		}
		if change, err = c.app.ToggleMovie(ctx, m.Movie); err != nil {
			return err
		}
		title = m.Title
		c.markMovie(m.ID, change.Favorite)
	case "track":
		t, err := pick(args[1:], c.lastTracks, usage)
		if err != nil {
			return err
		}
		if change, err = c.app.ToggleTrack(ctx, t.Track); err != nil {
			return err
		}
		title = t.Title
		c.markTrack(t.ID, change.Favorite)
	default:
		return usageError(usage)
	}

	if change.Favorite {
		fmt.Fprintf(c.out, "Added %s to favorites.\n", title)
	} else {
		fmt.Fprintf(c.out, "Removed %s from favorites.\n", title)
	}
	c.printSync(change)
	return nil
}

func (c *CLI) handleFavorites() error {
	nMovies, nTracks := c.app.Counts()
	if nMovies == 0 && nTracks == 0 {
		fmt.Fprintln(c.out, "No favorites yet.")
		return nil
	}
	movies, tracks := c.app.Favorites()
	if len(movies) > 0 {
		fmt.Fprintf(c.out, "Movies (%d):\n", nMovies)
		for _, m := range movies {
			fmt.Fprintf(c.out, "  [%s] %s (%s)\n", m.FavoriteKey(), m.Title, year(m.ReleaseDate))
		}
	}
	if len(tracks) > 0 {
		fmt.Fprintf(c.out, "Tracks (%d):\n", nTracks)
		for _, t := range tracks {
			fmt.Fprintf(c.out, "  [%s] %s - %s\n", t.FavoriteKey(), t.Title, t.Artist.Name)
		}
	}
	return nil
}

func (c *CLI) handleUnfav(ctx context.Context, args []string) error {
	const usage = "unfav movie|track <id>"
	if len(args) != 2 {
		return usageError(usage)
	}

	kind := favorites.Kind(args[0] + "s")
	if !kind.Valid() {
		return usageError(usage)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	change, err := c.app.RemoveFavorite(ctx, kind, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Removed from favorites.")
	c.printSync(change)
	return nil
}

func (c *CLI) handleSignUp(ctx context.Context, args []string) error {
	var username, email string
	var err error
	if len(args) > 0 {
		username = args[0]
	} else if username, err = c.promptForInput("Username: "); err != nil {
		return err
	}
	if len(args) > 1 {
		email = args[1]
	} else if email, err = c.promptForInput("Email: "); err != nil {
		return err
	}
	password, err := c.promptForPassword("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	user, err := c.app.SignUp(ctx, username, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Account %s created. Use 'login' to sign in.\n", user.Username)
	return nil
}

func (c *CLI) handleLogin(ctx context.Context, args []string) error {
	var email string
	var err error
	if len(args) > 0 {
		email = args[0]
	} else if email, err = c.promptForInput("Email: "); err != nil {
		return err
	}
	password, err := c.promptForPassword("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	user, report, err := c.app.Login(ctx, email, password)
	if user.ID == "" {
		return err
	}
	fmt.Fprintf(c.out, "Welcome, %s!\n", user.Username)
	if err != nil {
		fmt.Fprintf(c.out, "Favorites not synced: %s\n", app.Describe(err))
		return nil
	}
	c.printReport(report)
	return nil
}

func (c *CLI) handleLogout(ctx context.Context) error {
	if err := c.app.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Signed out. Your favorites stay on this device.")
	return nil
}

func (c *CLI) handleProfile(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if args[0] != "set" || len(args) != 3 {
			return usageError("profile set <username> <email>")
		}
		ctx, cancel := c.withTimeout(ctx)
		defer cancel()

		user, err := c.app.UpdateProfile(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Profile updated: %s <%s>\n", user.Username, user.Email)
		return nil
	}

	if cached, ok, err := c.app.CachedUser(ctx); err == nil && ok {
		fmt.Fprintf(c.out, "%s <%s> (cached)\n", cached.Username, cached.Email)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	p, err := c.app.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s <%s>\n", p.Username, p.Email)
	fmt.Fprintf(c.out, "  %d favorite movies, %d favorite tracks on the server\n", len(p.Favorites.Movies), len(p.Favorites.Tracks))
	return nil
}

func (c *CLI) handlePasswd(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("passwd <current> <new>")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.app.ChangePassword(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Password updated successfully")
	return nil
}

func (c *CLI) handleSync(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	report, err := c.app.Sync(ctx)
	if err != nil {
		return err
	}
	c.printReport(report)
	return nil
}

func (c *CLI) printSync(change app.Change) {
	if change.SyncErr != nil {
		fmt.Fprintf(c.out, "Saved on this device only: %s\n", app.Describe(change.SyncErr))
	}
}

func (c *CLI) printReport(r app.SyncReport) {
	fmt.Fprintf(c.out, "Synced favorites: %d sent, %d received.\n", r.Pushed, r.Pulled)
}

func (c *CLI) markMovie(id int64, fav bool) {
	for i := range c.lastMovies {
		if c.lastMovies[i].ID == id {
			c.lastMovies[i].Favorite = fav
		}
	}
}

func (c *CLI) markTrack(id int64, fav bool) {
	for i := range c.lastTracks {
		if c.lastTracks[i].ID == id {
			c.lastTracks[i].Favorite = fav
		}
	}
}

// pick resolves a 1-based position into the last browse results.
func pick[T any](args []string, list []T, usage string) (T, error) {
	var zero T
	if len(args) != 1 {
		return zero, usageError(usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return zero, usageError(usage)
	}
	if len(list) == 0 {
		return zero, usageError("browse first, then " + usage)
	}
	if n < 1 || n > len(list) {
		return zero, usageError(fmt.Sprintf("%s with n between 1 and %d", usage, len(list)))
	}
	return list[n-1], nil
}

func star(fav bool) string {
	if fav {
		return "★"
	}
	return "☆"
}

func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "n/a"
}
