package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
)

// Schema creates the card table.
const Schema = `
CREATE TABLE IF NOT EXISTS ufs_cards (
	name           TEXT PRIMARY KEY,
	kind           TEXT NOT NULL,
	check_value    INTEGER NOT NULL DEFAULT 0,
	difficulty     INTEGER NOT NULL DEFAULT 0,
	block_zone     TEXT NOT NULL DEFAULT 'none',
	block_modifier INTEGER NOT NULL DEFAULT 0,
	symbols        TEXT[] NOT NULL DEFAULT '{}',
	keywords       TEXT[] NOT NULL DEFAULT '{}',
	rules_text     TEXT NOT NULL DEFAULT '',
	is_unique      BOOLEAN NOT NULL DEFAULT FALSE,
	enhance        BOOLEAN NOT NULL DEFAULT FALSE,
	response       BOOLEAN NOT NULL DEFAULT FALSE,
	form           BOOLEAN NOT NULL DEFAULT FALSE,
	blitz          BOOLEAN NOT NULL DEFAULT FALSE,
	vitality       INTEGER NOT NULL DEFAULT 0,
	hand_size      INTEGER NOT NULL DEFAULT 0,
	speed          INTEGER NOT NULL DEFAULT 0,
	damage         INTEGER NOT NULL DEFAULT 0,
	attack_zone    TEXT NOT NULL DEFAULT 'none',
	throw          BOOLEAN NOT NULL DEFAULT FALSE,
	flash          BOOLEAN NOT NULL DEFAULT FALSE
)`

const cardColumns = `name, kind, check_value, difficulty, block_zone, block_modifier,
	symbols, keywords, rules_text, is_unique, enhance, response, form, blitz,
	vitality, hand_size, speed, damage, attack_zone, throw, flash`

const upsertCard = `
INSERT INTO ufs_cards (` + cardColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
ON CONFLICT (name) DO UPDATE SET
	kind = EXCLUDED.kind,
	check_value = EXCLUDED.check_value,
	difficulty = EXCLUDED.difficulty,
	block_zone = EXCLUDED.block_zone,
	block_modifier = EXCLUDED.block_modifier,
	symbols = EXCLUDED.symbols,
	keywords = EXCLUDED.keywords,
	rules_text = EXCLUDED.rules_text,
	is_unique = EXCLUDED.is_unique,
	enhance = EXCLUDED.enhance,
	response = EXCLUDED.response,
	form = EXCLUDED.form,
	blitz = EXCLUDED.blitz,
	vitality = EXCLUDED.vitality,
	hand_size = EXCLUDED.hand_size,
	speed = EXCLUDED.speed,
	damage = EXCLUDED.damage,
	attack_zone = EXCLUDED.attack_zone,
	throw = EXCLUDED.throw,
	flash = EXCLUDED.flash`

// DBTX is the subset of *pgxpool.Pool the repository uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CardRepository reads and writes printed card records.
type CardRepository struct {
	db DBTX
}

// NewCardRepository creates a repository backed by db.
func NewCardRepository(db DBTX) *CardRepository {
	return &CardRepository{db: db}
}

// EnsureSchema creates the card table if it does not exist.
func (r *CardRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// All returns every card ordered by name.
func (r *CardRepository) All(ctx context.Context) ([]card.Data, error) {
	return r.query(ctx, `SELECT `+cardColumns+` FROM ufs_cards ORDER BY name`)
}

// ByNames returns the cards whose names appear in names, ordered by name. Unknown names
// are skipped.
func (r *CardRepository) ByNames(ctx context.Context, names []string) ([]card.Data, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+cardColumns+` FROM ufs_cards WHERE name = ANY($1) ORDER BY name`, names)
}

// Upsert inserts or replaces cards in a single transaction and returns how many were
// written.
func (r *CardRepository) Upsert(ctx context.Context, cards []card.Data) (int, error) {
	written := 0
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, data := range cards {
			if err := data.Validate(); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, upsertCard, cardArgs(data)...); err != nil {
				return fmt.Errorf("upsert %q: %w", data.Name, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (r *CardRepository) query(ctx context.Context, sql string, args ...any) ([]card.Data, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	cards, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (card.Data, error) {
		return scanCard(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan cards: %w", err)
	}
	return cards, nil
}

// scanCard reads one row selected with cardColumns.
func scanCard(row pgx.Row) (card.Data, error) {
	var (
		data                 card.Data
		kind, block, atkZone string
		symbols, keywords    []string
	)
	err := row.Scan(
		&data.Name, &kind, &data.Check, &data.Difficulty, &block, &data.BlockModifier,
		&symbols, &keywords, &data.Text, &data.Unique, &data.Enhance, &data.Response, &data.Form, &data.Blitz,
		&data.Vitality, &data.HandSize, &data.Speed, &data.Damage, &atkZone, &data.Throw, &data.Flash,
	)
	if err != nil {
		return data, err
	}

	if data.Kind, err = card.ParseKind(kind); err != nil {
		return data, err
	}
	if data.BlockZone, err = card.ParseBlockZone(block); err != nil {
		return data, err
	}
	if data.AttackZone, err = card.ParseBlockZone(atkZone); err != nil {
		return data, err
	}
	if len(symbols) > 0 {
		data.Symbols = symbols
	}
	if len(keywords) > 0 {
		data.Keywords = keywords
	}
	return data, nil
}

// cardArgs returns the upsert parameters for data in cardColumns order.
func cardArgs(data card.Data) []any {
	return []any{
		data.Name, strings.ToLower(data.Kind.String()), data.Check, data.Difficulty, strings.ToLower(data.BlockZone.String()), data.BlockModifier,
		nonNil(data.Symbols), nonNil(data.Keywords), data.Text, data.Unique, data.Enhance, data.Response, data.Form, data.Blitz,
		data.Vitality, data.HandSize, data.Speed, data.Damage, strings.ToLower(data.AttackZone.String()), data.Throw, data.Flash,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
