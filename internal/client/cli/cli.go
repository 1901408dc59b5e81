// Package cli is the interactive terminal front end of the client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"media-favorites/internal/client/app"
)

// Prompter is the part of *readline.Instance the CLI uses.
type Prompter interface {
	Readline() (string, error)
	ReadPassword(prompt string) ([]byte, error)
	SetPrompt(prompt string)
}

var errExit = errors.New("exit requested")

// usageError is printed as is instead of being described.
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

type CLI struct {
	app     *app.App
	rl      Prompter
	out     io.Writer
	timeout time.Duration

	// Results of the last browse, addressed by position in later commands.
	lastMovies []app.MovieView
	lastTracks []app.TrackView
}

func New(a *app.App, rl Prompter, out io.Writer, timeout time.Duration) *CLI {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CLI{app: a, rl: rl, out: out, timeout: timeout}
}

// Run reads and executes commands until exit or EOF.
func (c *CLI) Run(ctx context.Context) error {
	c.updatePrompt(ctx)
	for {
		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(c.out, "Use 'exit' to quit.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		args := ParseArgs(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}

		err = c.Execute(ctx, args)
		if errors.Is(err, errExit) {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}
		c.report(err)
		c.updatePrompt(ctx)
	}
}

// ParseArgs splits a line on spaces, keeping double-quoted runs together.
func ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
			current.Reset()
		}
		quoted = false
	}

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case (r == ' ' || r == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return args
}

// Execute runs one parsed command.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "movies":
		return c.handleMovies(ctx, args[1:])
	case "music":
		return c.handleMusic(ctx, args[1:])
	case "movie":
		return c.handleMovie(ctx, args[1:])
	case "track":
		return c.handleTrack(ctx, args[1:])
	case "fav":
		return c.handleFav(ctx, args[1:])
	case "favorites":
		return c.handleFavorites()
	case "unfav":
		return c.handleUnfav(ctx, args[1:])
	case "signup":
		return c.handleSignUp(ctx, args[1:])
	case "login":
		return c.handleLogin(ctx, args[1:])
	case "logout":
		return c.handleLogout(ctx)
	case "profile":
		return c.handleProfile(ctx, args[1:])
	case "passwd":
		return c.handlePasswd(ctx, args[1:])
	case "sync":
		return c.handleSync(ctx)
	case "help":
		c.printHelp(args[1:])
		return nil
	case "exit", "quit":
		return errExit
	}
	return usageError(fmt.Sprintf("unknown command %q, try 'help'", args[0]))
}

func (c *CLI) report(err error) {
	if err == nil {
		return
	}
	var u usageError
	if errors.As(err, &u) {
		fmt.Fprintln(c.out, u.Error())
		return
	}
	fmt.Fprintln(c.out, "Error:", app.Describe(err))
}

func (c *CLI) updatePrompt(ctx context.Context) {
	user, ok, err := c.app.CachedUser(ctx)
	if err != nil || !ok {
		c.rl.SetPrompt("media> ")
		return
	}
	c.rl.SetPrompt(fmt.Sprintf("media(%s)> ", user.Username))
}

func (c *CLI) promptForInput(label string) (string, error) {
	c.rl.SetPrompt(label)
	line, err := c.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) promptForPassword(label string) (string, error) {
	b, err := c.rl.ReadPassword(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *CLI) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *CLI) printHelp(args []string) {
	if len(args) > 0 {
		if h, ok := commandHelp[args[0]]; ok {
			fmt.Fprintln(c.out, h)
			return
		}
		fmt.Fprintf(c.out, "Unknown command: %s\n", args[0])
		return
	}
	fmt.Fprintln(c.out, "Available commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(c.out, "  %s\n", commandHelp[name])
	}
}

var commandOrder = []string{
	"movies", "music", "movie", "track", "fav", "favorites", "unfav",
	"signup", "login", "logout", "profile", "passwd", "sync", "help", "exit",
}

var commandHelp = map[string]string{
	"movies":    "movies [query]             popular movies, or search by title",
	"music":     "music [query]              chart tracks, or search",
	"movie":     "movie <n>                  details of movie n from the last list",
	"track":     "track <n>                  details of track n from the last list",
	"fav":       "fav movie|track <n>        toggle favorite for item n of the last list",
	"favorites": "favorites                  list your favorites",
	"unfav":     "unfav movie|track <id>     remove a favorite by id",
	"signup":    "signup [username] [email]  create an account",
	"login":     "login [email]              sign in and sync favorites",
	"logout":    "logout                     sign out, favorites stay on this device",
	"profile":   "profile | profile set <username> <email>",
	"passwd":    "passwd <current> <new>     change your password",
	"sync":      "sync                       merge local and server favorites",
	"help":      "help [command]",
	"exit":      "exit                       quit",
}
