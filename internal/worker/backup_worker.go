package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xiaofeng1coin/jizhangxt/internal/amqp"
	"github.com/xiaofeng1coin/jizhangxt/internal/sheets"
	"github.com/xiaofeng1coin/jizhangxt/internal/store"
)

const backupPrefix = "ledger-"

// ChangeConsumer delivers snapshot change messages to a handler.
type ChangeConsumer interface {
	ConsumeSnapshotChanged(ctx context.Context, handler func(*amqp.SnapshotChangedMessage) error) error
}

// BackupWorker writes timestamped copies of the ledger document and
// optionally mirrors the record list to an external sheet. It reacts to
// change messages and also runs on a periodic tick so missed messages
// are caught up.
type BackupWorker struct {
	store     store.Store
	backupDir string
	keep      int
	mirror    sheets.RecordMirror
	now       func() time.Time
}

func NewBackupWorker(st store.Store, backupDir string, keep int, mirror sheets.RecordMirror) *BackupWorker {
	return &BackupWorker{
		store:     st,
		backupDir: backupDir,
		keep:      keep,
		mirror:    mirror,
		now:       time.Now,
	}
}

// HandleChangeMessage processes a single snapshot change message by
// taking a fresh backup.
func (w *BackupWorker) HandleChangeMessage(ctx context.Context, msg *amqp.SnapshotChangedMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"op", msg.Op,
		"record_id", msg.RecordID)
	return w.Backup(ctx)
}

// Backup loads the current document, writes it to a timestamped file in
// the backup directory and prunes backups beyond the retention count.
// The sheet mirror runs afterwards; a mirror failure does not fail the
// backup since the local copy is already on disk.
func (w *BackupWorker) Backup(ctx context.Context) error {
	res, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	data, err := store.EncodeDocument(res.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(w.backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	name := backupPrefix + w.now().Format("20060102-150405") + ".json"
	path := filepath.Join(w.backupDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	slog.InfoContext(ctx, "Backup written",
		"backup_file", path,
		"records", len(res.Snapshot.Records))

	if err := w.prune(); err != nil {
		slog.WarnContext(ctx, "Failed to prune old backups", "error", err)
	}

	if w.mirror != nil {
		if err := w.mirror.Mirror(ctx, res.Snapshot.Records); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror records to sheet", "error", err)
		}
	}

	return nil
}

// prune removes the oldest backups beyond the retention count. The
// timestamped names sort chronologically, so lexical order is enough.
func (w *BackupWorker) prune() error {
	entries, err := os.ReadDir(w.backupDir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) <= w.keep {
		return nil
	}
	sort.Strings(names)

	for _, name := range names[:len(names)-w.keep] {
		if err := os.Remove(filepath.Join(w.backupDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the worker: one goroutine consumes change messages (when a
// consumer is configured), another takes periodic catch-up backups. It
// blocks until the context is cancelled or either loop fails.
func (w *BackupWorker) Run(ctx context.Context, consumer ChangeConsumer, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeSnapshotChanged(ctx, func(msg *amqp.SnapshotChangedMessage) error {
				return w.HandleChangeMessage(ctx, msg)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.Backup(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic backup failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
