package database

import (
	"fmt"

	"github.com/lysyi3m/update-comb/app/ledger"
)

type ledgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetRecords(locale string) ([]ledger.Record, error) {
	return r.queryRecords(`
		SELECT id, name, COALESCE(url, ''), target, date
		FROM update_records
		WHERE locale = ?
		ORDER BY id ASC
	`, locale)
}

func (r *ledgerRepository) GetRecordsAfter(locale string, afterID int64) ([]ledger.Record, error) {
	return r.queryRecords(`
		SELECT id, name, COALESCE(url, ''), target, date
		FROM update_records
		WHERE locale = ? AND id > ?
		ORDER BY id ASC
	`, locale, afterID)
}

func (r *ledgerRepository) queryRecords(query string, args ...any) ([]ledger.Record, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger records: %w", err)
	}
	defer rows.Close()

	var records []ledger.Record
	for rows.Next() {
		var rec ledger.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.URL, &rec.Target, &rec.Date); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	return records, nil
}

func (r *ledgerRepository) GetMaxID(locale string) (int64, error) {
	var maxID int64
	err := r.db.QueryRow(`
		SELECT COALESCE(MAX(id), 0) FROM update_records WHERE locale = ?
	`, locale).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("failed to get max record id: %w", err)
	}
	return maxID, nil
}

func (r *ledgerRepository) GetRecordCount(locale string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM update_records WHERE locale = ?
	`, locale).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get record count: %w", err)
	}
	return count, nil
}

func (r *ledgerRepository) GetTotalRecordCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM update_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get total record count: %w", err)
	}
	return count, nil
}

// CommitCycle makes one processed cycle durable in a single transaction.
// The tracking entry is replaced even when no records were appended, so a
// tableless but unchanged page is not reparsed every cycle. A partially
// visible commit would corrupt the append-only invariant; the transaction
// guarantees readers see the ledger either pre- or post-cycle.
func (r *ledgerRepository) CommitCycle(locale, url, contentHash string, fresh []ledger.Record) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range fresh {
		_, err := tx.Exec(`
			INSERT INTO update_records (locale, id, name, url, target, date)
			VALUES (?, ?, ?, ?, ?, ?)
		`, locale, rec.ID, rec.Name, nullIfEmpty(rec.URL), rec.Target, rec.Date)
		if err != nil {
			return fmt.Errorf("failed to append record %d: %w", rec.ID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO tracking (locale, url, content_hash, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT (locale) DO UPDATE SET
			url = excluded.url,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
	`, locale, url, contentHash)
	if err != nil {
		return fmt.Errorf("failed to upsert tracking entry: %w", err)
	}

	if len(fresh) > 0 {
		_, err = tx.Exec(`
			INSERT INTO locale_changes (locale, detected_at)
			VALUES (?, datetime('now'))
			ON CONFLICT (locale) DO UPDATE SET detected_at = excluded.detected_at
		`, locale)
		if err != nil {
			return fmt.Errorf("failed to mark locale changed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle: %w", err)
	}

	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
