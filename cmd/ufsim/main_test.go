package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/ufsim/ufsim-server-go/internal/config"
	"github.com/ufsim/ufsim-server-go/internal/spectate"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		logger, err := initLogger(config.LoggingConfig{Level: tt.level, Format: "json"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(tt.want), tt.level)
		assert.False(t, logger.Core().Enabled(tt.want-1), tt.level)
	}
}

func TestRunBundledDecks(t *testing.T) {
	cfg := &config.Config{
		Game: config.GameConfig{StartingPlayer: 1, Seed: 11, MaxTurns: 6},
		Cards: config.CardsConfig{
			Source:      config.SourceYAML,
			CatalogFile: "../../data/cards.yaml",
			DeckFile:    "../../data/decks.yaml",
		},
	}
	require.NoError(t, run(context.Background(), cfg, zaptest.NewLogger(t)))
}

func TestRunTournamentBundledDecks(t *testing.T) {
	*tournamentMode = true
	t.Cleanup(func() { *tournamentMode = false })

	cfg := &config.Config{
		Game: config.GameConfig{StartingPlayer: 1, Seed: 3, MaxTurns: 4},
		Cards: config.CardsConfig{
			Source:      config.SourceYAML,
			CatalogFile: "../../data/cards.yaml",
			DeckFile:    "../../data/decks.yaml",
		},
	}
	require.NoError(t, run(context.Background(), cfg, zaptest.NewLogger(t)))
}

func TestSpectatorHandlerRoutes(t *testing.T) {
	handler := spectatorHandler(spectate.NewHub(zap.NewNop()), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "plain GET is not a websocket upgrade")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
