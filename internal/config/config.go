// Package config loads the simulator configuration from a YAML file, with
// UFSIM_-prefixed environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Card sources.
const (
	SourceYAML     = "yaml"
	SourcePostgres = "postgres"
)

// Config is the full simulator configuration.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Cards    CardsConfig    `mapstructure:"cards"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GameConfig controls how games are set up.
type GameConfig struct {
	StartingPlayer int    `mapstructure:"starting_player"`
	Seed           int64  `mapstructure:"seed"` // 0 picks a crypto seed
	MaxTurns       int    `mapstructure:"max_turns"`
	Player1Name    string `mapstructure:"player1_name"`
	Player2Name    string `mapstructure:"player2_name"`
}

// CardsConfig locates the card catalog and deck lists.
type CardsConfig struct {
	Source      string `mapstructure:"source"`
	CatalogFile string `mapstructure:"catalog_file"`
	DeckFile    string `mapstructure:"deck_file"`
}

// DatabaseConfig configures the Postgres card catalog.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.starting_player", 1)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.max_turns", 20)
	v.SetDefault("game.player1_name", "Player 1")
	v.SetDefault("game.player2_name", "Player 2")

	v.SetDefault("cards.source", SourceYAML)
	v.SetDefault("cards.catalog_file", "data/cards.yaml")
	v.SetDefault("cards.deck_file", "data/decks.yaml")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the configuration at path. An empty path loads defaults and environment
// overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("UFSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot check on its own.
func (c *Config) Validate() error {
	var errs []error

	if c.Game.StartingPlayer != 1 && c.Game.StartingPlayer != 2 {
		errs = append(errs, fmt.Errorf("game.starting_player must be 1 or 2, got %d", c.Game.StartingPlayer))
	}
	if c.Game.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("game.max_turns must be positive, got %d", c.Game.MaxTurns))
	}

	switch c.Cards.Source {
	case SourceYAML:
		if c.Cards.CatalogFile == "" {
			errs = append(errs, errors.New("cards.catalog_file is required for the yaml source"))
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres source"))
		}
	default:
		errs = append(errs, fmt.Errorf("cards.source must be %q or %q, got %q", SourceYAML, SourcePostgres, c.Cards.Source))
	}

	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
