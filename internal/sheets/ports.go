package sheets

import (
	"context"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
)

// RecordMirror replicates the full record list to an external sheet.
// The mirror is wholesale: the target is rewritten on every call so it
// always matches the single ledger document.
type RecordMirror interface {
	Mirror(ctx context.Context, records []core.Record) error
}
