/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps a local conversion log in an embedded SQLite file.
// Batch runs and the server record one row per conversion when a history
// path is configured; an empty path disables the log entirely.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	applog "github.com/atticusofsparta/svg-2-gltf-webapp/internal/log"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/version"
	"log/slog"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Bump this when you perform breaking schema changes and add migrations.
const schemaVersion = 1

// Entry is one recorded conversion.
type Entry struct {
	ID        int64
	Source    string
	Status    string // "ok" or "error"
	Error     string
	Shapes    int
	Skipped   int
	Vertices  int
	Triangles int
	Duration  time.Duration
	Output    string
	CreatedAt time.Time
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Log is an open conversion log. Safe for sequential use; the embedded
// database runs on a single connection.
type Log struct {
	db *sql.DB
}

// Open creates or opens the history database at path, enables WAL mode and
// ensures the schema exists.
func Open(path string) (*Log, error) {
	l := applog.WithOperation(applog.WithComponent("history"), "open").With(
		slog.String("path", path),
	)
	if path == "" {
		return nil, errors.New("history path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("history ready")
	return &Log{db: db}, nil
}

func (h *Log) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Record appends one conversion row and returns its id.
func (h *Log) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := h.db.ExecContext(ctx, `
		INSERT INTO conversions
			(source, status, error, shapes, skipped, vertices, triangles, duration_ms, output, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Source, e.Status, e.Error, e.Shapes, e.Skipped, e.Vertices, e.Triangles,
		e.Duration.Milliseconds(), e.Output, e.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("record conversion: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to n rows, newest first.
func (h *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, source, status, error, shapes, skipped, vertices, triangles, duration_ms, output, created_at
		FROM conversions ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var durMS int64
		var created string
		if err := rows.Scan(&e.ID, &e.Source, &e.Status, &e.Error, &e.Shapes, &e.Skipped,
			&e.Vertices, &e.Triangles, &durMS, &e.Output, &created); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		e.Duration = time.Duration(durMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id         INTEGER PRIMARY KEY CHECK(id=1),
			schema     INTEGER NOT NULL,
			app        TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS conversions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			source      TEXT NOT NULL,
			status      TEXT NOT NULL,
			error       TEXT NOT NULL DEFAULT '',
			shapes      INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			vertices    INTEGER NOT NULL,
			triangles   INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			output      TEXT NOT NULL,
			created_at  TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created ON conversions(created_at);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx,
			`INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`,
			schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx,
			`UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}
