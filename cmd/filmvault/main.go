package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/tmukas/filmvault/internal/catalog"
	"github.com/tmukas/filmvault/internal/config"
	"github.com/tmukas/filmvault/internal/log"
	"github.com/tmukas/filmvault/internal/store"
	"github.com/tmukas/filmvault/internal/tmdb"
	"github.com/tmukas/filmvault/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("filmvault %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting filmvault", "version", Version)

	if !cfg.IsConfigured() {
		return fmt.Errorf("no TMDB API key configured; set tmdb.api_key in the config file or FILMVAULT_TMDB_API_KEY")
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("filmvault requires an interactive terminal")
	}

	movieStore, err := store.Open(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("failed to open movie store: %w", err)
	}
	defer movieStore.Close()

	client := tmdb.NewClient(tmdb.Options{
		BaseURL:        cfg.TMDB.BaseURL,
		APIKey:         cfg.TMDB.APIKey,
		Language:       cfg.TMDB.Language,
		MinVoteAverage: cfg.TMDB.MinVoteAverage,
		MinVoteCount:   cfg.TMDB.MinVoteCount,
		IncludeAdult:   cfg.TMDB.IncludeAdult,
	}, logger)

	svc := catalog.NewService(client, movieStore, logger)

	moviesVM := catalog.NewMoviesViewModel(svc, movieStore, logger)
	favoritesVM := catalog.NewFavoritesViewModel(svc, movieStore, logger)
	moviesVM.Start()
	favoritesVM.Start()
	defer moviesVM.Close()
	defer favoritesVM.Close()

	model := tui.NewModel(moviesVM, favoritesVM)

	logger.Info("starting TUI")
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
