package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
)

// FileStore persists the snapshot document as a single JSON file,
// data.json inside the configured data directory.
type FileStore struct {
	path string
}

// NewFileStore ensures the data directory exists and returns a store
// writing to <dir>/data.json.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, "data.json")}, nil
}

// Load reads the document. A missing or unparseable file resets to the
// default snapshot, persists it and reports the recovery instead of
// propagating a fatal error.
func (f *FileStore) Load(ctx context.Context) (LoadResult, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return f.recover(ctx, "data file not found")
		}
		return LoadResult{}, fmt.Errorf("read %s: %w", f.path, err)
	}

	snapshot, err := DecodeDocument(data)
	if err != nil {
		return f.recover(ctx, fmt.Sprintf("corrupt data file: %v", err))
	}
	return LoadResult{Snapshot: snapshot}, nil
}

func (f *FileStore) recover(ctx context.Context, reason string) (LoadResult, error) {
	slog.WarnContext(ctx, "Resetting ledger to default snapshot", "path", f.path, "reason", reason)
	def := DefaultSnapshot()
	if err := f.Save(ctx, def); err != nil {
		return LoadResult{}, fmt.Errorf("persist default snapshot: %w", err)
	}
	return LoadResult{Snapshot: def, Recovered: true, Reason: reason}, nil
}

// Save writes the whole document in one shot via a temp file rename, so a
// crash mid-write never leaves a half document behind.
func (f *FileStore) Save(ctx context.Context, s core.Snapshot) error {
	data, err := EncodeDocument(s)
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}

	slog.DebugContext(ctx, "Snapshot saved", "path", f.path, "records", len(s.Records))
	return nil
}

// Close implements Store; the file store holds no resources.
func (f *FileStore) Close() error { return nil }
