package core

import (
	"strings"

	"github.com/google/uuid"
)

// MergedRecord is the display-time collapse of every record sharing one
// group key on a given day. Count tells how many raw records were folded
// in; ID anchors edit and delete links and is the id of the first record
// of the group in source order.
type MergedRecord struct {
	ID          string
	Type        RecordType
	Category    string
	Amount      Money
	Description string
	Date        string
	Count       int
}

// MergeForDay filters records to the given date and groups them by
// (type, category). Amounts are summed; descriptions are the distinct,
// non-empty, trimmed texts joined with ", " in first-seen order. The
// transform is read-only: the snapshot is untouched.
func MergeForDay(records []Record, date string) []MergedRecord {
	var order []GroupKey
	groups := make(map[GroupKey]*MergedRecord)
	seenDesc := make(map[GroupKey]map[string]bool)

	for _, r := range records {
		if r.Date != date {
			continue
		}
		key := r.Key()
		g, ok := groups[key]
		if !ok {
			g = &MergedRecord{
				ID:       r.ID,
				Type:     r.Type,
				Category: r.Category,
				Date:     r.Date,
			}
			groups[key] = g
			seenDesc[key] = make(map[string]bool)
			order = append(order, key)
		}
		g.Amount += r.Amount
		g.Count++
		desc := strings.TrimSpace(r.Description)
		if desc != "" && !seenDesc[key][desc] {
			seenDesc[key][desc] = true
			if g.Description == "" {
				g.Description = desc
			} else {
				g.Description += ", " + desc
			}
		}
	}

	out := make([]MergedRecord, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}

// RecordChanges carries the replacement values of an edit. All fields are
// applied; an edit is a full rewrite of the conceptual ledger line.
type RecordChanges struct {
	Type        RecordType
	Category    string
	Amount      Money
	Description string
	Date        string
}

// ApplyAdd validates the record, assigns it a fresh id and returns a new
// snapshot with it appended. An empty date defaults to today.
func ApplyAdd(s Snapshot, r Record) (Snapshot, error) {
	r.Category = strings.TrimSpace(r.Category)
	r.Description = strings.TrimSpace(r.Description)
	if r.Date == "" {
		r.Date = Today()
	}
	if err := r.Validate(); err != nil {
		return s, err
	}
	r.ID = uuid.NewString()
	out := s.Clone()
	out.Records = append(out.Records, r)
	return out, nil
}

// ApplyEdit locates the record, removes every record sharing its original
// (date, type, category) key and inserts exactly one new record carrying
// the edited values under a fresh id. Editing one line of a multi-record
// group therefore collapses the whole group; sibling amounts are
// discarded, not kept as history. This is the product's intended
// day-level consolidation, surfaced in the UI as "editing merges all
// same-day same-category entries".
func ApplyEdit(s Snapshot, id string, changes RecordChanges) (Snapshot, error) {
	original, ok := s.FindRecord(id)
	if !ok {
		return s, ErrRecordNotFound
	}
	replacement := Record{
		Type:        changes.Type,
		Category:    strings.TrimSpace(changes.Category),
		Amount:      changes.Amount,
		Description: strings.TrimSpace(changes.Description),
		Date:        changes.Date,
	}
	if replacement.Date == "" {
		replacement.Date = Today()
	}
	if err := replacement.Validate(); err != nil {
		return s, err
	}
	replacement.ID = uuid.NewString()

	out := s.Clone()
	out.Records = removeGroup(out.Records, original.Key())
	out.Records = append(out.Records, replacement)
	return out, nil
}

// ApplyDelete removes every record sharing the identified record's group
// key, not just the one id. Deleting one line of a group deletes the
// conceptual ledger line.
func ApplyDelete(s Snapshot, id string) (Snapshot, error) {
	original, ok := s.FindRecord(id)
	if !ok {
		return s, ErrRecordNotFound
	}
	out := s.Clone()
	out.Records = removeGroup(out.Records, original.Key())
	return out, nil
}

func removeGroup(records []Record, key GroupKey) []Record {
	out := records[:0]
	for _, r := range records {
		if r.Key() != key {
			out = append(out, r)
		}
	}
	return out
}
