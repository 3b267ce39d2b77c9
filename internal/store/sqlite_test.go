package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRecoversWhenEmpty(t *testing.T) {
	s := newTestSQLiteStore(t)

	res, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Recovered {
		t.Fatal("empty table must report recovery")
	}

	res, err = s.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if res.Recovered {
		t.Fatal("second load must be clean")
	}
}

func TestSQLiteStoreSaveLoad(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	snap := DefaultSnapshot()
	snap.Records = append(snap.Records, core.Record{
		ID: "a", Type: core.Income, Category: "工资", Amount: 800000, Date: "2024-05-10",
	})
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	res, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Snapshot.Records) != 1 || res.Snapshot.Records[0].Amount != 800000 {
		t.Fatalf("round trip broken: %+v", res.Snapshot.Records)
	}

	// Saving again replaces the document rather than adding rows.
	snap.Records = nil
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	res, _ = s.Load(ctx)
	if len(res.Snapshot.Records) != 0 {
		t.Fatalf("document must be replaced wholesale: %+v", res.Snapshot.Records)
	}
}
