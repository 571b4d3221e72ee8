package ledger

import (
	"fmt"

	"github.com/lysyi3m/update-comb/app/page"
)

// Assigner reconciles a fresh extraction against a locale's persisted
// ledger and assigns stable ascending ids to rows not seen before.
type Assigner struct{}

func NewAssigner() *Assigner {
	return &Assigner{}
}

// Run takes the ledger ascending by id and the extraction in source order
// (newest first) and returns the records to append, ids continuing from the
// ledger's current maximum. Matching is by (name, target, date) identity;
// the tuple set spans the entire ledger and the entire extraction, so
// upstream reordering degrades to dedup instead of producing duplicate ids.
func (a *Assigner) Run(existing []Record, rows []page.Row) []Record {
	known := make(map[string]bool, len(existing)+len(rows))
	var maxID int64
	for _, r := range existing {
		known[identity(r.Name, r.Target, r.Date)] = true
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	fresh := []Record{}
	for _, row := range oldestFirst(rows) {
		key := identity(row.Name, row.Target, row.Date)
		if known[key] {
			continue
		}
		known[key] = true

		maxID++
		fresh = append(fresh, Record{
			ID:     maxID,
			Name:   row.Name,
			URL:    row.URL,
			Target: row.Target,
			Date:   row.Date,
		})
	}

	return fresh
}

// oldestFirst inverts the source's newest-first document order into the
// ledger's ascending order. Every other piece of assignment logic only ever
// sees ascending order.
func oldestFirst(rows []page.Row) []page.Row {
	out := make([]page.Row, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out
}

func identity(name, target, date string) string {
	return fmt.Sprintf("%s|%s|%s", name, target, date)
}
