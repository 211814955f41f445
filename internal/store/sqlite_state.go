package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "index.sqlite"

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when a script runs beside the TUI.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			ai_generated INTEGER NOT NULL,
			depends_on_json TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_position ON items(position);`,
		`CREATE TABLE IF NOT EXISTS run_flags (
			item_id TEXT PRIMARY KEY,
			completed INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s Store) loadSQLite() (*DB, error) {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	out := &DB{Version: 1, Items: []model.ChecklistItem{}, Run: map[string]bool{}}

	var v string
	if err := db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, "version").Scan(&v); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			out.Version = n
		}
	}

	rows, err := db.QueryContext(ctx, `SELECT json FROM items ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var it model.ChecklistItem
		if err := json.Unmarshal([]byte(js), &it); err != nil {
			return nil, fmt.Errorf("decode stored item: %w", err)
		}
		out.Items = append(out.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	flagRows, err := db.QueryContext(ctx, `SELECT item_id, completed FROM run_flags`)
	if err != nil {
		return nil, err
	}
	defer flagRows.Close()
	for flagRows.Next() {
		var id string
		var completed int
		if err := flagRows.Scan(&id, &completed); err != nil {
			return nil, err
		}
		if completed != 0 {
			out.Run[id] = true
		}
	}
	if err := flagRows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s Store) saveSQLite(st *DB) error {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	version := st.Version
	if version == 0 {
		version = 1
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", strconv.Itoa(version)); err != nil {
		return err
	}

	// Replace-all strategy: simple and safe at checklist scale.
	for _, t := range []string{"items", "run_flags"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()

	for i, it := range st.Items {
		raw, err := json.Marshal(it)
		if err != nil {
			return err
		}
		deps, _ := json.Marshal(it.DependsOn)
		if _, err := tx.ExecContext(ctx, `INSERT INTO items(
			id, position, title, ai_generated, depends_on_json, json, updated_at_unixms
		) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			it.ID, i, it.Title, boolToInt(it.MachineGenerated), string(deps), string(raw), nowMs,
		); err != nil {
			return err
		}
	}

	for id, completed := range st.Run {
		if !completed {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO run_flags(item_id, completed, updated_at_unixms) VALUES(?, ?, ?)`,
			id, 1, nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
