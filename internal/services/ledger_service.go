package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xiaofeng1coin/jizhangxt/internal/amqp"
	"github.com/xiaofeng1coin/jizhangxt/internal/core"
	"github.com/xiaofeng1coin/jizhangxt/internal/store"
)

// ChangePublisher announces snapshot mutations to interested consumers.
// Publishing is best effort: a failed publish never fails the mutation.
type ChangePublisher interface {
	PublishSnapshotChanged(ctx context.Context, op, recordID string) error
}

// LedgerService orchestrates every mutation and read of the ledger
// document. Each operation is a full load-compute-save cycle over the
// snapshot store.
type LedgerService struct {
	store            store.Store
	publisher        ChangePublisher
	strictCategories bool
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithPublisher attaches a change publisher.
func WithPublisher(p ChangePublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithStrictCategories makes record writes reject categories that are
// not registered for the record's type.
func WithStrictCategories(strict bool) Option {
	return func(s *LedgerService) { s.strictCategories = strict }
}

func NewLedgerService(st store.Store, opts ...Option) *LedgerService {
	s := &LedgerService{store: st}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot loads the current ledger document.
func (s *LedgerService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	res, err := s.store.Load(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return res.Snapshot, nil
}

// AddRecord validates and appends a new record, returning it with its
// assigned id.
func (s *LedgerService) AddRecord(ctx context.Context, r core.Record) (core.Record, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.Record{}, err
	}
	if err := s.checkCategory(snap, r.Type, r.Category); err != nil {
		return core.Record{}, err
	}

	next, err := core.ApplyAdd(snap, r)
	if err != nil {
		return core.Record{}, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return core.Record{}, fmt.Errorf("save snapshot: %w", err)
	}

	added := next.Records[len(next.Records)-1]
	s.publish(ctx, amqp.OpRecordAdded, added.ID)
	return added, nil
}

// EditRecord replaces the identified record's whole day-level group with
// a single record carrying the new values.
func (s *LedgerService) EditRecord(ctx context.Context, id string, changes core.RecordChanges) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.checkCategory(snap, changes.Type, changes.Category); err != nil {
		return err
	}

	next, err := core.ApplyEdit(snap, id, changes)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.publish(ctx, amqp.OpRecordEdited, id)
	return nil
}

// DeleteRecord removes the identified record's whole day-level group.
func (s *LedgerService) DeleteRecord(ctx context.Context, id string) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	next, err := core.ApplyDelete(snap, id)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.publish(ctx, amqp.OpRecordDeleted, id)
	return nil
}

// SetBudgets replaces the budget map wholesale. Non-positive budgets are
// dropped.
func (s *LedgerService) SetBudgets(ctx context.Context, budgets core.BudgetMap) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	next := snap.Clone()
	next.Budgets = budgets.Normalize()
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.publish(ctx, amqp.OpBudgetsUpdated, "")
	return nil
}

// SetKeepLastDate updates the add-form date retention setting.
func (s *LedgerService) SetKeepLastDate(ctx context.Context, keep bool) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	next := snap.Clone()
	next.Settings.KeepLastDate = keep
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// AddCategory registers a new category name for the given record type.
func (s *LedgerService) AddCategory(ctx context.Context, t core.RecordType, name string) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	next := snap.Clone()
	if err := next.Categories.Add(t, name); err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.publish(ctx, amqp.OpCategoryAdded, "")
	return nil
}

// DeleteCategory removes a category name. Existing records keep the name;
// only the selectable list shrinks.
func (s *LedgerService) DeleteCategory(ctx context.Context, t core.RecordType, name string) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	next := snap.Clone()
	if !next.Categories.Remove(t, name) {
		return fmt.Errorf("category not found: %s", name)
	}
	// A budget is meaningless without its category.
	if t == core.Expense {
		delete(next.Budgets, name)
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.publish(ctx, amqp.OpCategoryDeleted, "")
	return nil
}

// ImportDocument replaces the whole ledger document with the uploaded
// JSON. The document must carry all required sections; a rejected import
// leaves the current state untouched.
func (s *LedgerService) ImportDocument(ctx context.Context, data []byte) error {
	snap, err := store.DecodeDocument(data)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.publish(ctx, amqp.OpDocumentImported, "")
	return nil
}

// Dashboard is the main-page view: the selected day's merged records,
// its totals, the month totals and the month's budget progress.
type Dashboard struct {
	Date         string
	DayRecords   []core.MergedRecord
	DayTotals    core.Totals
	MonthTotals  core.Totals
	Progress     map[string]core.CategoryProgress
	OverallPct   float64
	TotalBudget  core.Money
	Categories   core.CategorySet
	Budgets      core.BudgetMap
	KeepLastDate bool
}

// LoadDashboard computes the dashboard for the given date. An empty date
// defaults to today.
func (s *LedgerService) LoadDashboard(ctx context.Context, date string) (Dashboard, error) {
	if date == "" {
		date = core.Today()
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	month := date
	if len(month) >= 7 {
		month = month[:7]
	}
	overall, totalBudget := core.OverallProgress(snap.Records, snap.Budgets, month)
	return Dashboard{
		Date:         date,
		DayRecords:   core.MergeForDay(snap.Records, date),
		DayTotals:    core.Aggregate(snap.Records, core.Day(date)),
		MonthTotals:  core.Aggregate(snap.Records, core.Month(month)),
		Progress:     core.BudgetProgress(snap.Records, snap.Budgets, month),
		OverallPct:   overall,
		TotalBudget:  totalBudget,
		Categories:   snap.Categories,
		Budgets:      snap.Budgets,
		KeepLastDate: snap.Settings.KeepLastDate,
	}, nil
}

// Annual computes the annual report for the given year together with the
// selectable year list. An empty year defaults to the current one.
func (s *LedgerService) Annual(ctx context.Context, year string) (core.Report, []string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.Report{}, nil, err
	}
	years := core.AvailableYears(snap.Records, time.Now().Year())
	if year == "" {
		year = years[0]
	}
	return core.AnnualReport(snap.Records, year), years, nil
}

// ExportCSV renders all records as a spreadsheet-friendly CSV document.
func (s *LedgerService) ExportCSV(ctx context.Context) ([]byte, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.ExportCSV(snap.Records)
}

// ExportJSON renders the whole ledger document in its canonical form.
func (s *LedgerService) ExportJSON(ctx context.Context) ([]byte, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return store.EncodeDocument(snap)
}

func (s *LedgerService) checkCategory(snap core.Snapshot, t core.RecordType, name string) error {
	if !s.strictCategories {
		return nil
	}
	// Match against the name as it would be stored, not the raw input.
	name = strings.TrimSpace(name)
	if !snap.Categories.Contains(t, name) {
		return fmt.Errorf("category not registered: %s", name)
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, op, recordID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSnapshotChanged(ctx, op, recordID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"op", op, "record_id", recordID, "error", err)
		// The mutation is already persisted; consumers catch up on the
		// next periodic backup tick.
	}
}

// Close closes the underlying store.
func (s *LedgerService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
