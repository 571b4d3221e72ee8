package database

import (
	"database/sql"
	"fmt"
)

type trackingRepository struct {
	db *DB
}

func NewTrackingRepository(db *DB) TrackingRepository {
	return &trackingRepository{db: db}
}

func (r *trackingRepository) GetTracking(locale string) (*TrackingEntry, error) {
	var entry TrackingEntry
	err := r.db.QueryRow(`
		SELECT locale, url, content_hash
		FROM tracking
		WHERE locale = ?
	`, locale).Scan(&entry.Locale, &entry.URL, &entry.ContentHash)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking entry: %w", err)
	}

	return &entry, nil
}

func (r *trackingRepository) GetTrackedLocaleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM tracking").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get tracked locale count: %w", err)
	}
	return count, nil
}
