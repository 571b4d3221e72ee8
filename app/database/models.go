package database

// TrackingEntry records, per locale, the URL and content digest of the last
// successfully processed fetch. It is overwritten every processed cycle.
type TrackingEntry struct {
	Locale      string
	URL         string
	ContentHash string
}

// Subscription is one subscriber's delivery cursor into a locale's ledger.
// A nil LastSeenID means nothing has been delivered yet.
type Subscription struct {
	ChatID     int64
	Locale     string
	LastSeenID *int64
}
