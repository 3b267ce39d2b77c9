package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  RecordType = "income"
	Expense RecordType = "expense"
)

type (
	// RecordType distinguishes income from expense entries.
	RecordType string

	// Record is one atomic ledger entry. Date stays a YYYY-MM-DD string at
	// the engine boundary: time windows are defined as string-prefix
	// matches and malformed dates must degrade silently rather than fail
	// parsing up front.
	Record struct {
		ID          string     `json:"id"`
		Type        RecordType `json:"type"`
		Category    string     `json:"category"`
		Amount      Money      `json:"amount"`
		Description string     `json:"description"`
		Date        string     `json:"date"`
	}

	// CategorySet holds the expense and income category names in display
	// order. Insertion order is preserved; membership is the invariant.
	CategorySet struct {
		Expense []string `json:"expense"`
		Income  []string `json:"income"`
	}

	// BudgetMap maps a category name to its monthly budget. Only positive
	// budgets are tracked; Normalize drops everything else.
	BudgetMap map[string]Money

	// Settings carries display-level defaults, not engine behavior.
	Settings struct {
		KeepLastDate bool `json:"keep_last_date"`
	}

	// Snapshot is the full persisted state, the unit of load and save.
	Snapshot struct {
		Records    []Record    `json:"records"`
		Categories CategorySet `json:"categories"`
		Budgets    BudgetMap   `json:"budgets"`
		Settings   Settings    `json:"settings"`
	}

	// GroupKey identifies the conceptual ledger line a record belongs to.
	// A value type with field-wise equality so grouping can never collide
	// on embedded separators.
	GroupKey struct {
		Date     string
		Type     RecordType
		Category string
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidType    = errors.New("invalid record type")
	ErrEmptyCategory  = errors.New("empty category")
	ErrRecordNotFound = errors.New("record not found")
)

// DateLayout is the calendar date format used throughout the ledger.
const DateLayout = "2006-01-02"

// Valid reports whether t is one of the two known record types.
func (t RecordType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the localized display label for the type.
func (t RecordType) Label() string {
	if t == Income {
		return "收入"
	}
	return "支出"
}

// Key returns the record's group key.
func (r Record) Key() GroupKey {
	return GroupKey{Date: r.Date, Type: r.Type, Category: r.Category}
}

// Validate checks the creation invariants: a known type, a non-empty
// category and a positive amount. Date format is deliberately not part of
// the contract (see Window).
func (r Record) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Contains reports whether name is a member of the set for the given type.
func (c CategorySet) Contains(t RecordType, name string) bool {
	for _, n := range c.names(t) {
		if n == name {
			return true
		}
	}
	return false
}

// Add appends name to the set for the given type, preserving order.
// Duplicates and empty names are rejected.
func (c *CategorySet) Add(t RecordType, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategory
	}
	if !t.Valid() {
		return ErrInvalidType
	}
	if c.Contains(t, name) {
		return errors.New("category already exists")
	}
	if t == Income {
		c.Income = append(c.Income, name)
	} else {
		c.Expense = append(c.Expense, name)
	}
	return nil
}

// Remove deletes name from the set for the given type. Reports whether the
// name was present.
func (c *CategorySet) Remove(t RecordType, name string) bool {
	names := c.names(t)
	for i, n := range names {
		if n == name {
			out := append(append([]string{}, names[:i]...), names[i+1:]...)
			if t == Income {
				c.Income = out
			} else {
				c.Expense = out
			}
			return true
		}
	}
	return false
}

func (c CategorySet) names(t RecordType) []string {
	if t == Income {
		return c.Income
	}
	return c.Expense
}

// Normalize returns a copy with non-positive budgets dropped. An absent or
// zero budget means the category is not tracked at all.
func (b BudgetMap) Normalize() BudgetMap {
	out := make(BudgetMap, len(b))
	for name, amount := range b {
		if amount > 0 {
			out[name] = amount
		}
	}
	return out
}

// Total sums all tracked budgets.
func (b BudgetMap) Total() Money {
	var total Money
	for _, amount := range b {
		total += amount
	}
	return total
}

// Clone deep-copies the snapshot. Mutation operations work on a clone so
// the caller's snapshot is never changed in place.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Records: append([]Record(nil), s.Records...),
		Categories: CategorySet{
			Expense: append([]string(nil), s.Categories.Expense...),
			Income:  append([]string(nil), s.Categories.Income...),
		},
		Budgets:  make(BudgetMap, len(s.Budgets)),
		Settings: s.Settings,
	}
	for name, amount := range s.Budgets {
		out.Budgets[name] = amount
	}
	return out
}

// FindRecord returns the record with the given id, if any.
func (s Snapshot) FindRecord(id string) (Record, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Today returns the current calendar date in the ledger's date format.
func Today() string {
	return time.Now().Format(DateLayout)
}
