package notifier

import (
	"github.com/lysyi3m/update-comb/app/ledger"
)

// Engine computes which ledger records a subscriber has not seen yet and
// where the cursor moves after a successful delivery.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Undelivered returns the records beyond the subscriber's cursor, ascending.
// A nil cursor means the subscriber has seen nothing: the full ledger is due.
func (e *Engine) Undelivered(records []ledger.Record, lastSeenID *int64) []ledger.Record {
	if lastSeenID == nil {
		return records
	}

	// Records are ascending by id; find the first one past the cursor.
	for i, rec := range records {
		if rec.ID > *lastSeenID {
			return records[i:]
		}
	}
	return nil
}

// NextCursor returns the cursor position after a successful delivery: the
// ledger's current maximum id, not the maximum delivered id, so the cursor
// stays monotonic even when the rendered batch was truncated.
func (e *Engine) NextCursor(records []ledger.Record) (int64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	return records[len(records)-1].ID, true
}
