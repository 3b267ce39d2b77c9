package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the snapshot document in a one-row table. The
// single-document model is preserved on purpose: load and save still move
// the whole snapshot, sqlite only adds durable storage and a saved_at
// timestamp.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// runs the embedded migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads the document row. A missing or unparseable row resets to the
// default snapshot, exactly like the file backend.
func (s *SQLiteStore) Load(ctx context.Context) (LoadResult, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM snapshot WHERE id = 1`).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.recover(ctx, "no snapshot row")
	case err != nil:
		return LoadResult{}, fmt.Errorf("query snapshot: %w", err)
	}

	snapshot, err := DecodeDocument(data)
	if err != nil {
		return s.recover(ctx, fmt.Sprintf("corrupt snapshot row: %v", err))
	}
	return LoadResult{Snapshot: snapshot}, nil
}

func (s *SQLiteStore) recover(ctx context.Context, reason string) (LoadResult, error) {
	slog.WarnContext(ctx, "Resetting ledger to default snapshot", "backend", "sqlite", "reason", reason)
	def := DefaultSnapshot()
	if err := s.Save(ctx, def); err != nil {
		return LoadResult{}, fmt.Errorf("persist default snapshot: %w", err)
	}
	return LoadResult{Snapshot: def, Recovered: true, Reason: reason}, nil
}

// Save replaces the document row wholesale.
func (s *SQLiteStore) Save(ctx context.Context, snapshot core.Snapshot) error {
	data, err := EncodeDocument(snapshot)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshot (id, document, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document, saved_at = excluded.saved_at`,
		data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved", "backend", "sqlite", "records", len(snapshot.Records))
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
