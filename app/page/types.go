package page

// Row is a single raw row extracted from an updates table, in document
// order (the source lists newest releases first). Date holds the raw,
// locale-specific string until normalization.
type Row struct {
	Name   string
	URL    string
	Target string
	Date   string
}
