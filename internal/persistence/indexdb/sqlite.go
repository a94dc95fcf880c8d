// Package indexdb writes datasets into a SQLite file for ad-hoc SQL queries.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/planner"
	"fdv.tools/internal/slots"
)

type SQLiteIndex struct {
	db   *sql.DB
	once sync.Once
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS races (
			variant TEXT NOT NULL,
			key TEXT NOT NULL,
			display TEXT NOT NULL,
			color TEXT NOT NULL,
			aliases_json TEXT NOT NULL,
			PRIMARY KEY (variant, key)
		);`,
		`CREATE TABLE IF NOT EXISTS buildings (
			variant TEXT NOT NULL,
			race TEXT NOT NULL,
			idx INTEGER NOT NULL,
			key TEXT NOT NULL,
			icon TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			PRIMARY KEY (variant, race, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS slots (
			variant TEXT NOT NULL,
			slot INTEGER NOT NULL,
			label TEXT NOT NULL,
			tier INTEGER NOT NULL,
			sub INTEGER NOT NULL,
			population INTEGER NOT NULL,
			PRIMARY KEY (variant, slot)
		);`,
		`CREATE TABLE IF NOT EXISTS requirements (
			variant TEXT NOT NULL,
			race TEXT NOT NULL,
			slot INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			building TEXT NOT NULL,
			level INTEGER NOT NULL,
			PRIMARY KEY (variant, race, slot, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_requirements_building ON requirements(variant, race, building, slot);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}

// UpsertDataset replaces every row of the dataset's variant in one
// transaction.
func (s *SQLiteIndex) UpsertDataset(ctx context.Context, ds *catalogs.Dataset) error {
	if s == nil {
		return nil
	}
	spec := ds.Spec()
	raw, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	variant := ds.Variant()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"races", "buildings", "slots", "requirements"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE variant=?`, variant); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)
		 ON CONFLICT(name) DO UPDATE SET digest=excluded.digest, json=excluded.json, updated_at=excluded.updated_at`,
		variant, ds.Digest(), string(raw), now); err != nil {
		return fmt.Errorf("catalogs: %w", err)
	}
	for k, v := range map[string]string{"last_variant": variant, "last_digest": ds.Digest(), "updated_at": now} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta(key,value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v); err != nil {
			return fmt.Errorf("meta: %w", err)
		}
	}

	for slot := 1; slot <= slots.Count; slot++ {
		ref := slots.FromSlot(slot)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO slots(variant,slot,label,tier,sub,population) VALUES(?,?,?,?,?,?)`,
			variant, slot, ref.Label(), ref.Tier, ref.Sub, ds.Population(slot)); err != nil {
			return fmt.Errorf("slots: %w", err)
		}
	}

	reqStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO requirements(variant,race,slot,idx,building,level) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer reqStmt.Close()

	for _, r := range ds.Races() {
		aliases, _ := json.Marshal(r.Aliases())
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO races(variant,key,display,color,aliases_json) VALUES(?,?,?,?,?)`,
			variant, r.Key(), r.Display(), r.Color(), string(aliases)); err != nil {
			return fmt.Errorf("races: %w", err)
		}
		buildings := r.Buildings()
		for i, b := range buildings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO buildings(variant,race,idx,key,icon,name,category) VALUES(?,?,?,?,?,?,?)`,
				variant, r.Key(), i, b.Key, b.Icon, b.Name, planner.CategoryOf(i, b).String()); err != nil {
				return fmt.Errorf("buildings: %w", err)
			}
		}
		for slot := 1; slot <= slots.Count; slot++ {
			for i, lvl := range r.Row(slot) {
				if _, err := reqStmt.ExecContext(ctx, variant, r.Key(), slot, i, buildings[i].Key, lvl); err != nil {
					return fmt.Errorf("requirements: %w", err)
				}
			}
		}
	}
	return tx.Commit()
}

// ExportSQLite writes the datasets to path, creating or updating the file.
func ExportSQLite(ctx context.Context, path string, datasets ...*catalogs.Dataset) error {
	idx, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	for _, ds := range datasets {
		if err := idx.UpsertDataset(ctx, ds); err != nil {
			_ = idx.Close()
			return fmt.Errorf("%s: %w", ds.Variant(), err)
		}
	}
	return idx.Close()
}
