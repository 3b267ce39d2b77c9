// Package store owns persistence of the ledger snapshot. The snapshot is
// a single JSON document regardless of backend: the file backend keeps it
// in data/data.json, the sqlite backend in a one-row document table. Every
// mutation in the application is a full load-compute-save cycle over that
// document; there is no partial write and no cross-process locking (see
// the lost-update note on Save).
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
)

// ErrMissingSection is returned by DecodeDocument when an imported
// document lacks one of the required top-level sections.
var ErrMissingSection = errors.New("document missing required section")

type (
	// LoadResult is the tagged outcome of a load: either the persisted
	// snapshot, or the documented default with Recovered set and Reason
	// telling why (missing file, corrupt JSON, ...). Callers treat both
	// the same; the flag exists so recovery is logged, never silent.
	LoadResult struct {
		Snapshot  core.Snapshot
		Recovered bool
		Reason    string
	}

	// Store is the single-document snapshot store.
	//
	// The load-modify-save cycle is not transactionally isolated: two
	// overlapping writers each load, compute and save, and the second
	// save silently discards the first writer's changes. That is a known
	// and deliberate property of the single-user design, kept rather
	// than papered over with hidden locking.
	Store interface {
		Load(ctx context.Context) (LoadResult, error)
		Save(ctx context.Context, s core.Snapshot) error
		Close() error
	}
)

// DefaultSnapshot returns the documented initial state: the stock
// category lists, no records, no budgets.
func DefaultSnapshot() core.Snapshot {
	return core.Snapshot{
		Records: []core.Record{},
		Categories: core.CategorySet{
			Expense: []string{"餐饮", "交通", "购物", "娱乐", "住房", "通讯", "医疗", "教育", "人情", "其他"},
			Income:  []string{"工资", "兼职", "理财", "红包", "奖金", "其他"},
		},
		Budgets: core.BudgetMap{},
	}
}

// EncodeDocument serializes the snapshot as the canonical pretty-printed
// JSON document, with records sorted date-descending for display.
func EncodeDocument(s core.Snapshot) ([]byte, error) {
	out := s.Clone()
	sortRecords(out.Records)
	if out.Records == nil {
		out.Records = []core.Record{}
	}
	if out.Budgets == nil {
		out.Budgets = core.BudgetMap{}
	}
	if out.Categories.Expense == nil {
		out.Categories.Expense = []string{}
	}
	if out.Categories.Income == nil {
		out.Categories.Income = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDocument parses a snapshot document. The three core sections are
// required; a document without records, categories or budgets is rejected
// rather than silently coerced. Settings are optional and default to the
// zero value.
func DecodeDocument(data []byte) (core.Snapshot, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return core.Snapshot{}, fmt.Errorf("parse document: %w", err)
	}
	for _, section := range []string{"records", "categories", "budgets"} {
		if _, ok := probe[section]; !ok {
			return core.Snapshot{}, fmt.Errorf("%w: %s", ErrMissingSection, section)
		}
	}

	var s core.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return core.Snapshot{}, fmt.Errorf("parse document: %w", err)
	}
	if s.Records == nil {
		s.Records = []core.Record{}
	}
	if s.Budgets == nil {
		s.Budgets = core.BudgetMap{}
	}
	return s, nil
}

// sortRecords orders records newest date first; ties keep input order.
func sortRecords(records []core.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
}
