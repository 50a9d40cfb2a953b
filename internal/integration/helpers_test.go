package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ufsim/ufsim-server-go/internal/carddata"
	"github.com/ufsim/ufsim-server-go/internal/config"
	"github.com/ufsim/ufsim-server-go/internal/game"
)

// testEnv loads the bundled card data through a generated config file.
type testEnv struct {
	cfg     *config.Config
	catalog *carddata.Catalog
	decks   *carddata.DeckFile
	logger  *zap.Logger
}

func newTestEnv(t testing.TB, seed int64, maxTurns int) *testEnv {
	t.Helper()

	dataDir, err := filepath.Abs("../../data")
	if err != nil {
		t.Fatalf("Failed to resolve data dir: %v", err)
	}

	body := fmt.Sprintf(`
game:
  seed: %d
  max_turns: %d
  player1_name: Alice
  player2_name: Bob
cards:
  source: yaml
  catalog_file: %s
  deck_file: %s
logging:
  level: debug
`, seed, maxTurns, filepath.Join(dataDir, "cards.yaml"), filepath.Join(dataDir, "decks.yaml"))

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	catalog, err := carddata.LoadCatalog(cfg.Cards.CatalogFile)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	decks, err := carddata.LoadDecks(cfg.Cards.DeckFile)
	if err != nil {
		t.Fatalf("Failed to load decks: %v", err)
	}

	return &testEnv{cfg: cfg, catalog: catalog, decks: decks, logger: zap.NewNop()}
}

// newGame creates and starts a game in mgr with decks 1 and 2 of the deck file.
func (env *testEnv) newGame(t testing.TB, mgr *game.Manager) *game.Engine {
	t.Helper()

	engine := mgr.Create(game.Options{
		Player1Name:    env.cfg.Game.Player1Name,
		Player2Name:    env.cfg.Game.Player2Name,
		StartingPlayer: env.cfg.Game.StartingPlayer,
		Seed:           env.cfg.Game.Seed,
	})

	for playerID := 1; playerID <= 2; playerID++ {
		entry, err := env.decks.DeckByNumber(playerID)
		if err != nil {
			t.Fatalf("Failed to find deck %d: %v", playerID, err)
		}
		character, cards, err := env.catalog.BuildDeck(entry)
		if err != nil {
			t.Fatalf("Failed to build deck %q: %v", entry.Name, err)
		}
		if err := engine.SetupPlayer(playerID, character, cards); err != nil {
			t.Fatalf("Failed to set up player %d: %v", playerID, err)
		}
	}

	if err := engine.StartGame(); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}
	return engine
}
