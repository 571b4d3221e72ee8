package database

import (
	"github.com/lysyi3m/update-comb/app/ledger"
)

// TrackingRepository reads per-locale change-detection state. Writes happen
// exclusively through LedgerRepository.CommitCycle so that tracking and
// ledger never diverge.
type TrackingRepository interface {
	GetTracking(locale string) (*TrackingEntry, error)
	GetTrackedLocaleCount() (int, error)
}

// LedgerRepository owns the append-only per-locale record ledgers.
type LedgerRepository interface {
	GetRecords(locale string) ([]ledger.Record, error)
	GetRecordsAfter(locale string, afterID int64) ([]ledger.Record, error)
	GetMaxID(locale string) (int64, error)
	GetRecordCount(locale string) (int, error)
	GetTotalRecordCount() (int, error)

	// CommitCycle persists one processed cycle for a locale atomically:
	// fresh records appended, tracking entry replaced and, when records were
	// appended, the locale marked changed for the notifier.
	CommitCycle(locale, url, contentHash string, fresh []ledger.Record) error
}

// SubscriptionRepository manages subscriber delivery cursors.
type SubscriptionRepository interface {
	GetSubscription(chatID int64) (*Subscription, error)
	GetSubscribersForLocale(locale string) ([]Subscription, error)
	GetSubscriberCount() (int, error)

	UpsertSubscription(chatID int64, locale string) error
	DeleteSubscription(chatID int64) error
	AdvanceCursor(chatID int64, lastSeenID int64) error
}

// ChangeSignalRepository exposes the transient changed-locale markers
// written by the monitoring cycle and consumed by the notifier.
type ChangeSignalRepository interface {
	GetChangedLocales() ([]string, error)
	ClearChangedLocale(locale string) error
}
