package database

import (
	"path/filepath"
	"testing"

	"github.com/lysyi3m/update-comb/app/ledger"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestCommitCycleAppendsRecords(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)

	fresh := []ledger.Record{
		{ID: 1, Name: "Safari 17.1", URL: "https://support.apple.com/HT213982", Target: "macOS Ventura", Date: "2023-10-25"},
		{ID: 2, Name: "iOS 17.2", URL: "https://support.apple.com/HT213530", Target: "iPhone XS and later", Date: "2023-12-11"},
	}

	if err := repo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "abc123", fresh); err != nil {
		t.Fatalf("Expected commit to succeed, got: %v", err)
	}

	records, err := repo.GetRecords("en-us")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got: %d", len(records))
	}
	if records[0].ID != 1 || records[0].Name != "Safari 17.1" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].URL != "https://support.apple.com/HT213530" {
		t.Errorf("Unexpected URL on second record: %s", records[1].URL)
	}

	maxID, err := repo.GetMaxID("en-us")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if maxID != 2 {
		t.Errorf("Expected max id 2, got: %d", maxID)
	}

	// A second locale's ledger is independent.
	records, err = repo.GetRecords("fr-fr")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty ledger for untouched locale, got %d records", len(records))
	}
}

func TestCommitCycleUpdatesTracking(t *testing.T) {
	db := setupTestDB(t)
	ledgerRepo := NewLedgerRepository(db)
	trackingRepo := NewTrackingRepository(db)

	entry, err := trackingRepo.GetTracking("en-us")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if entry != nil {
		t.Fatal("Expected no tracking entry before first cycle")
	}

	if err := ledgerRepo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "hash-v1", nil); err != nil {
		t.Fatalf("Expected commit to succeed, got: %v", err)
	}

	entry, err = trackingRepo.GetTracking("en-us")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if entry == nil {
		t.Fatal("Expected tracking entry after commit")
	}
	if entry.ContentHash != "hash-v1" {
		t.Errorf("Expected hash-v1, got: %s", entry.ContentHash)
	}

	if err := ledgerRepo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "hash-v2", nil); err != nil {
		t.Fatalf("Expected second commit to succeed, got: %v", err)
	}

	entry, _ = trackingRepo.GetTracking("en-us")
	if entry.ContentHash != "hash-v2" {
		t.Errorf("Expected hash replaced with hash-v2, got: %s", entry.ContentHash)
	}

	count, err := trackingRepo.GetTrackedLocaleCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 tracked locale, got: %d", count)
	}
}

func TestCommitCycleMarksChangedLocale(t *testing.T) {
	db := setupTestDB(t)
	ledgerRepo := NewLedgerRepository(db)
	changeRepo := NewChangeSignalRepository(db)

	// No fresh records: no change marker.
	if err := ledgerRepo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "h1", nil); err != nil {
		t.Fatalf("Expected commit to succeed, got: %v", err)
	}

	changed, err := changeRepo.GetChangedLocales()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("Expected no change markers, got: %v", changed)
	}

	fresh := []ledger.Record{{ID: 1, Name: "iOS 17.3", Target: "iPhone XS and later", Date: "2024-01-22"}}
	if err := ledgerRepo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "h2", fresh); err != nil {
		t.Fatalf("Expected commit to succeed, got: %v", err)
	}

	changed, _ = changeRepo.GetChangedLocales()
	if len(changed) != 1 || changed[0] != "en-us" {
		t.Fatalf("Expected en-us marked changed, got: %v", changed)
	}

	if err := changeRepo.ClearChangedLocale("en-us"); err != nil {
		t.Fatalf("Expected clear to succeed, got: %v", err)
	}

	changed, _ = changeRepo.GetChangedLocales()
	if len(changed) != 0 {
		t.Errorf("Expected marker cleared, got: %v", changed)
	}
}

func TestCommitCycleRejectsDuplicateID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)

	fresh := []ledger.Record{{ID: 1, Name: "iOS 17.2", Target: "iPhone XS and later", Date: "2023-12-11"}}
	if err := repo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "h1", fresh); err != nil {
		t.Fatalf("Expected first commit to succeed, got: %v", err)
	}

	dup := []ledger.Record{{ID: 1, Name: "something else", Target: "x", Date: "2024-01-01"}}
	if err := repo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "h2", dup); err == nil {
		t.Fatal("Expected duplicate id to be rejected")
	}

	// The failed cycle must leave nothing behind, including its tracking write.
	records, _ := repo.GetRecords("en-us")
	if len(records) != 1 || records[0].Name != "iOS 17.2" {
		t.Errorf("Expected original record intact, got: %+v", records)
	}

	entry, _ := NewTrackingRepository(db).GetTracking("en-us")
	if entry == nil || entry.ContentHash != "h1" {
		t.Errorf("Expected tracking hash h1 after rolled-back cycle, got: %+v", entry)
	}
}

func TestGetRecordsAfter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)

	fresh := []ledger.Record{
		{ID: 1, Name: "a", Target: "t", Date: "2023-10-25"},
		{ID: 2, Name: "b", Target: "t", Date: "2023-12-11"},
		{ID: 3, Name: "c", Target: "t", Date: "2024-01-22"},
	}
	if err := repo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "h1", fresh); err != nil {
		t.Fatalf("Expected commit to succeed, got: %v", err)
	}

	records, err := repo.GetRecordsAfter("en-us", 1)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records after id 1, got: %d", len(records))
	}
	if records[0].ID != 2 || records[1].ID != 3 {
		t.Errorf("Expected ids [2 3], got: [%d %d]", records[0].ID, records[1].ID)
	}
}

func TestRecordWithoutURL(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)

	fresh := []ledger.Record{{ID: 1, Name: "watchOS 10.2", Target: "Apple Watch Series 4 and later", Date: "2023-12-11"}}
	if err := repo.CommitCycle("en-us", "https://support.apple.com/en-us/100100", "h1", fresh); err != nil {
		t.Fatalf("Expected commit to succeed, got: %v", err)
	}

	records, err := repo.GetRecords("en-us")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if records[0].URL != "" {
		t.Errorf("Expected empty URL round-trip, got: %s", records[0].URL)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db)

	sub, err := repo.GetSubscription(100)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if sub != nil {
		t.Fatal("Expected no subscription before upsert")
	}

	if err := repo.UpsertSubscription(100, "en-us"); err != nil {
		t.Fatalf("Expected upsert to succeed, got: %v", err)
	}

	sub, err = repo.GetSubscription(100)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if sub == nil || sub.Locale != "en-us" {
		t.Fatalf("Unexpected subscription: %+v", sub)
	}
	if sub.LastSeenID != nil {
		t.Errorf("Expected nil cursor for new subscription, got: %d", *sub.LastSeenID)
	}

	if err := repo.AdvanceCursor(100, 5); err != nil {
		t.Fatalf("Expected advance to succeed, got: %v", err)
	}
	sub, _ = repo.GetSubscription(100)
	if sub.LastSeenID == nil || *sub.LastSeenID != 5 {
		t.Fatalf("Expected cursor 5, got: %+v", sub.LastSeenID)
	}

	// A stale advance must not move the cursor backwards.
	if err := repo.AdvanceCursor(100, 3); err != nil {
		t.Fatalf("Expected advance to succeed, got: %v", err)
	}
	sub, _ = repo.GetSubscription(100)
	if *sub.LastSeenID != 5 {
		t.Errorf("Expected cursor to stay at 5, got: %d", *sub.LastSeenID)
	}

	// Re-subscribing to the same locale keeps the cursor.
	if err := repo.UpsertSubscription(100, "en-us"); err != nil {
		t.Fatalf("Expected upsert to succeed, got: %v", err)
	}
	sub, _ = repo.GetSubscription(100)
	if sub.LastSeenID == nil || *sub.LastSeenID != 5 {
		t.Errorf("Expected cursor preserved on same-locale upsert, got: %+v", sub.LastSeenID)
	}

	// Switching locale resets the cursor.
	if err := repo.UpsertSubscription(100, "fr-fr"); err != nil {
		t.Fatalf("Expected upsert to succeed, got: %v", err)
	}
	sub, _ = repo.GetSubscription(100)
	if sub.Locale != "fr-fr" {
		t.Errorf("Expected locale fr-fr, got: %s", sub.Locale)
	}
	if sub.LastSeenID != nil {
		t.Errorf("Expected cursor reset on locale switch, got: %d", *sub.LastSeenID)
	}

	if err := repo.DeleteSubscription(100); err != nil {
		t.Fatalf("Expected delete to succeed, got: %v", err)
	}
	sub, _ = repo.GetSubscription(100)
	if sub != nil {
		t.Error("Expected subscription gone after delete")
	}
}

func TestGetSubscribersForLocale(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db)

	for chatID, locale := range map[int64]string{
		100: "en-us",
		200: "en-us",
		300: "fr-fr",
	} {
		if err := repo.UpsertSubscription(chatID, locale); err != nil {
			t.Fatalf("Expected upsert to succeed, got: %v", err)
		}
	}

	subs, err := repo.GetSubscribersForLocale("en-us")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Expected 2 subscribers for en-us, got: %d", len(subs))
	}
	if subs[0].ChatID != 100 || subs[1].ChatID != 200 {
		t.Errorf("Expected chat ids [100 200], got: [%d %d]", subs[0].ChatID, subs[1].ChatID)
	}

	count, err := repo.GetSubscriberCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 subscribers total, got: %d", count)
	}
}
