package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ufsim/ufsim-server-go/internal/carddata"
	"github.com/ufsim/ufsim-server-go/internal/config"
	"github.com/ufsim/ufsim-server-go/internal/game"
	"github.com/ufsim/ufsim-server-go/internal/repository"
	"github.com/ufsim/ufsim-server-go/internal/sim"
	"github.com/ufsim/ufsim-server-go/internal/spectate"
	"github.com/ufsim/ufsim-server-go/internal/tournament"
)

var (
	configPath     = flag.String("config", "config/config.yaml", "path to configuration file")
	deck1          = flag.Int("p1", 1, "deck number for player 1 (from the deck file)")
	deck2          = flag.Int("p2", 2, "deck number for player 2 (from the deck file)")
	tournamentMode = flag.Bool("tournament", false, "play every deck in the deck file against every other deck")
	spectateAddr   = flag.String("spectate", "", "serve a read-only websocket feed of the games on this address")
	version        = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting ufsim",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	catalog, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("card catalog loaded",
		zap.String("source", cfg.Cards.Source),
		zap.Int("cards", catalog.Len()),
	)

	decks, err := carddata.LoadDecks(cfg.Cards.DeckFile)
	if err != nil {
		return fmt.Errorf("load decks: %w", err)
	}

	gameMgr := game.NewManager(logger)

	var hub *spectate.Hub
	if *spectateAddr != "" {
		hub = spectate.NewHub(logger)
		shutdown := serveSpectators(ctx, *spectateAddr, hub, logger)
		defer shutdown()
	}

	if *tournamentMode {
		return runTournament(ctx, cfg, gameMgr, catalog, decks, hub, logger)
	}

	var entries [2]carddata.DeckEntry
	for i, n := range []int{*deck1, *deck2} {
		if entries[i], err = decks.DeckByNumber(n); err != nil {
			return err
		}
	}

	res, err := playMatch(ctx, cfg, gameMgr, catalog, entries, hub, logger)
	if err != nil {
		return err
	}

	for _, id := range []int{1, 2} {
		s := res.Stats[id]
		logger.Info("player summary",
			zap.Int("player_id", id),
			zap.String("deck", entries[id-1].Name),
			zap.Int("checks_passed", s.ChecksPassed),
			zap.Int("checks_failed", s.ChecksFailed),
			zap.Int("attacks", s.Attacks),
			zap.Int("blocks", s.Blocks),
			zap.Int("damage_taken", s.DamageTaken),
		)
	}
	logger.Info("game finished",
		zap.String("game_id", res.GameID),
		zap.Int("turns", res.Turns),
		zap.Stringer("status", res.Status),
		zap.Int("winner", res.Winner),
		zap.String("checksum", res.Checksum),
	)
	return nil
}

// playMatch sets up one game between two decks and simulates it.
func playMatch(ctx context.Context, cfg *config.Config, gameMgr *game.Manager, catalog *carddata.Catalog, entries [2]carddata.DeckEntry, hub *spectate.Hub, logger *zap.Logger) (*sim.Result, error) {
	engine := gameMgr.Create(game.Options{
		Player1Name:    cfg.Game.Player1Name,
		Player2Name:    cfg.Game.Player2Name,
		StartingPlayer: cfg.Game.StartingPlayer,
		Seed:           cfg.Game.Seed,
	})
	defer gameMgr.Remove(engine.ID())

	if hub != nil {
		detach := hub.Attach(engine)
		defer detach()
	}

	for i, entry := range entries {
		playerID := i + 1
		character, cards, err := catalog.BuildDeck(entry)
		if err != nil {
			return nil, err
		}
		if err := engine.SetupPlayer(playerID, character, cards); err != nil {
			return nil, fmt.Errorf("setup player %d: %w", playerID, err)
		}
		logger.Debug("deck loaded",
			zap.String("game_id", engine.ID()),
			zap.Int("player_id", playerID),
			zap.String("deck", entry.Name),
			zap.String("character", character.Name()),
			zap.Int("cards", len(cards)),
		)
	}

	if err := engine.StartGame(); err != nil {
		return nil, err
	}

	res, err := sim.NewRunner(engine, cfg.Game.MaxTurns, logger).Run(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("replay recorded",
		zap.String("game_id", engine.ID()),
		zap.Int("states", engine.Replay().Size()),
	)
	return res, nil
}

// runTournament plays every deck in the deck file against every other deck once. The
// matches of a round run concurrently.
func runTournament(ctx context.Context, cfg *config.Config, gameMgr *game.Manager, catalog *carddata.Catalog, decks *carddata.DeckFile, hub *spectate.Hub, logger *zap.Logger) error {
	tournamentMgr := tournament.NewManager(logger)
	tour := tournamentMgr.CreateTournament("ufsim round robin")
	defer tournamentMgr.RemoveTournament(tour.ID)

	for _, entry := range decks.Decks {
		if err := tour.AddEntrant(entry.Name); err != nil {
			return err
		}
	}
	if err := tour.Start(); err != nil {
		return err
	}

	err := tour.PlayParallel(ctx, func(ctx context.Context, round int, player1, player2 string) (tournament.MatchResult, error) {
		var entries [2]carddata.DeckEntry
		for i, name := range []string{player1, player2} {
			entry, err := decks.DeckByName(name)
			if err != nil {
				return tournament.MatchResult{}, err
			}
			entries[i] = entry
		}

		res, err := playMatch(ctx, cfg, gameMgr, catalog, entries, hub, logger)
		if err != nil {
			return tournament.MatchResult{}, err
		}

		result := tournament.MatchResult{GameID: res.GameID, Turns: res.Turns}
		switch res.Winner {
		case 1:
			result.Winner = player1
		case 2:
			result.Winner = player2
		}
		logger.Info("match finished",
			zap.Int("round", round),
			zap.String("player1", player1),
			zap.String("player2", player2),
			zap.String("winner", result.Winner),
			zap.Int("turns", res.Turns),
		)
		return result, nil
	}, runtime.NumCPU())
	if err != nil {
		return err
	}

	for rank, e := range tour.Standings() {
		logger.Info("standing",
			zap.Int("rank", rank+1),
			zap.String("deck", e.Name),
			zap.Int("points", e.Points),
			zap.Int("wins", e.Wins),
			zap.Int("losses", e.Losses),
			zap.Int("draws", e.Draws),
		)
	}
	return nil
}

// serveSpectators runs the spectator hub and its HTTP server until the returned func
// is called.
func serveSpectators(ctx context.Context, addr string, hub *spectate.Hub, logger *zap.Logger) func() {
	hubCtx, cancel := context.WithCancel(ctx)
	go hub.Run(hubCtx)

	srv := &http.Server{Addr: addr, Handler: spectatorHandler(hub, logger), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("starting spectator feed", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("spectator feed error", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("spectator feed shutdown", zap.Error(err))
		}
		cancel()
	}
}

// spectatorHandler routes /ws to the hub and turns handler panics into 500s logged
// through zap.
func spectatorHandler(hub *spectate.Hub, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger.Named("spectate"))),
	)(mux)
}

func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*carddata.Catalog, error) {
	if cfg.Cards.Source != config.SourcePostgres {
		return carddata.LoadCatalog(cfg.Cards.CatalogFile)
	}

	db, err := repository.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	stats := db.Stat()
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
	)

	records, err := repository.NewCardRepository(db).All(ctx)
	if err != nil {
		return nil, err
	}
	return carddata.NewCatalog(records)
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
