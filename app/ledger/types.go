package ledger

// Record is one entry of a locale's append-only ledger. Ids are positive,
// unique per locale and strictly increasing in order of first appearance.
// Once assigned a record never changes.
type Record struct {
	ID     int64
	Name   string
	URL    string
	Target string
	Date   string
}
