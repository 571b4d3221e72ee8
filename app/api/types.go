package api

// LocaleInfo describes one monitored locale in API responses.
type LocaleInfo struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	RecordCount int    `json:"record_count"`
	MaxRecordID int64  `json:"max_record_id"`
}

// UpdateRecord is the API rendering of one ledger record.
type UpdateRecord struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Target string `json:"target"`
	Date   string `json:"date"`
}

// Stats aggregates service counters for the /stats endpoint.
type Stats struct {
	Locales        int `json:"locales"`
	TrackedLocales int `json:"tracked_locales"`
	TotalRecords   int `json:"total_records"`
	Subscribers    int `json:"subscribers"`
}
