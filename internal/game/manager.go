package game

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager keeps the engines of every running game, keyed by game id.
type Manager struct {
	logger *zap.Logger
	mu     sync.RWMutex
	games  map[string]*Engine
}

// NewManager creates an empty game registry.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger: logger,
		games:  make(map[string]*Engine),
	}
}

// Create builds a new engine and registers it. An empty or taken GameID is replaced
// with a fresh uuid.
func (m *Manager) Create(opts Options) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.games[opts.GameID]; opts.GameID == "" || taken {
		opts.GameID = uuid.NewString()
	}
	engine := NewEngine(m.logger, opts)
	m.games[engine.ID()] = engine

	m.logger.Info("game created",
		zap.String("game_id", engine.ID()),
		zap.Int("games", len(m.games)),
	)
	return engine
}

// Get returns the engine for a game id.
func (m *Manager) Get(gameID string) (*Engine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	engine, ok := m.games[gameID]
	return engine, ok
}

// Remove drops a game from the registry.
func (m *Manager) Remove(gameID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[gameID]; !ok {
		return false
	}
	delete(m.games, gameID)
	m.logger.Info("game removed", zap.String("game_id", gameID))
	return true
}

// List returns the registered game ids, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered games.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
