package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"media-favorites/internal/adapter/catalog/deezer"
	"media-favorites/internal/adapter/catalog/tmdb"
	"media-favorites/internal/client/app"
	"media-favorites/internal/client/backend"
	"media-favorites/internal/client/cli"
	"media-favorites/internal/client/mirror"
	"media-favorites/internal/client/session"
	"media-favorites/internal/client/store"
	"media-favorites/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	// The terminal belongs to the prompt; logs go to a file next to the database.
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "client.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, nil))

	movies := tmdb.NewClient(tmdb.Config{
		BaseURL:      cfg.TMDBBaseURL,
		ImageBaseURL: cfg.TMDBImageBaseURL,
		APIKey:       cfg.TMDBAPIKey,
		Timeout:      cfg.CatalogTimeout,
		RPS:          cfg.CatalogRPS,
	})
	tracks := deezer.NewClient(deezer.Config{
		BaseURL: cfg.DeezerBaseURL,
		Timeout: cfg.CatalogTimeout,
		RPS:     cfg.CatalogRPS,
	})

	a := app.New(movies, tracks,
		backend.New(cfg.APIURL, cfg.CatalogTimeout),
		session.New(db),
		mirror.NewMovies(db),
		mirror.NewTracks(db),
		logger,
	)

	// readline turns ^C into ErrInterrupt while prompting, so no signal handling here.
	ctx := context.Background()

	if err := a.Start(ctx); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "media> ",
		HistoryFile:     filepath.Join(cfg.DataDir, "history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("Welcome to media-favorites! Use 'help' for the list of commands.")
	logger.Info("client started", "api_url", cfg.APIURL, "data_dir", cfg.DataDir)

	return cli.New(a, rl, rl.Stdout(), cfg.CatalogTimeout).Run(ctx)
}
