// Package sqlite implements the Store interface on SQLite. The importer
// writes both tables; the server opens the database read-mostly and loads
// the catalog once at startup.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite database with WAL mode enabled.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps concurrent readers cheap while the importer writes.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	brand TEXT NOT NULL,
	key_ingredient TEXT,
	risk_score INTEGER DEFAULT 0,
	effectiveness_score REAL DEFAULT 0,
	UNIQUE(name, brand)
);

CREATE TABLE IF NOT EXISTS ingredients (
	name TEXT PRIMARY KEY COLLATE NOCASE,
	short_description TEXT,
	what_it_does TEXT,
	good_for TEXT,
	avoid TEXT,
	url TEXT
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Products returns all products ordered by insertion id, which preserves
// catalog order for the selector's tie-break.
func (s *sqliteStore) Products(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, brand, key_ingredient, risk_score, effectiveness_score
FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.Name, &p.Brand, &p.KeyIngredient, &p.RiskScore, &p.EffectivenessScore); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *sqliteStore) UpsertProduct(ctx context.Context, p catalog.Product) error {
	const stmt = `
INSERT INTO products (name, brand, key_ingredient, risk_score, effectiveness_score)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name, brand) DO UPDATE SET
	key_ingredient=excluded.key_ingredient,
	risk_score=excluded.risk_score,
	effectiveness_score=excluded.effectiveness_score`
	if _, err := s.db.ExecContext(ctx, stmt, p.Name, p.Brand, p.KeyIngredient, p.RiskScore, p.EffectivenessScore); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	return nil
}

func (s *sqliteStore) IngredientByName(ctx context.Context, name string) (catalog.Ingredient, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT name, short_description, what_it_does, good_for, avoid, url
FROM ingredients WHERE name = ?`, strings.TrimSpace(name))

	var ing catalog.Ingredient
	var goodFor, avoid string
	err := row.Scan(&ing.Name, &ing.ShortDescription, &ing.WhatItDoes, &goodFor, &avoid, &ing.URL)
	if err == sql.ErrNoRows {
		return catalog.Ingredient{}, false, nil
	}
	if err != nil {
		return catalog.Ingredient{}, false, err
	}
	if err := decodeList(goodFor, &ing.GoodFor); err != nil {
		return catalog.Ingredient{}, false, err
	}
	if err := decodeList(avoid, &ing.Avoid); err != nil {
		return catalog.Ingredient{}, false, err
	}
	return ing, true, nil
}

func (s *sqliteStore) UpsertIngredient(ctx context.Context, ing catalog.Ingredient) error {
	goodFor, err := json.Marshal([]string(ing.GoodFor))
	if err != nil {
		return err
	}
	avoid, err := json.Marshal([]string(ing.Avoid))
	if err != nil {
		return err
	}
	const stmt = `
INSERT INTO ingredients (name, short_description, what_it_does, good_for, avoid, url)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	short_description=excluded.short_description,
	what_it_does=excluded.what_it_does,
	good_for=excluded.good_for,
	avoid=excluded.avoid,
	url=excluded.url`
	if _, err := s.db.ExecContext(ctx, stmt, ing.Name, ing.ShortDescription, ing.WhatItDoes, string(goodFor), string(avoid), ing.URL); err != nil {
		return fmt.Errorf("upsert ingredient %q: %w", ing.Name, err)
	}
	return nil
}

func decodeList(raw string, out *catalog.StringList) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), (*[]string)(out))
}
