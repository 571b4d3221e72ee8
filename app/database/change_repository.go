package database

import (
	"fmt"
)

type changeSignalRepository struct {
	db *DB
}

func NewChangeSignalRepository(db *DB) ChangeSignalRepository {
	return &changeSignalRepository{db: db}
}

func (r *changeSignalRepository) GetChangedLocales() ([]string, error) {
	rows, err := r.db.Query("SELECT locale FROM locale_changes ORDER BY locale")
	if err != nil {
		return nil, fmt.Errorf("failed to get changed locales: %w", err)
	}
	defer rows.Close()

	var locales []string
	for rows.Next() {
		var locale string
		if err := rows.Scan(&locale); err != nil {
			return nil, fmt.Errorf("failed to scan changed locale: %w", err)
		}
		locales = append(locales, locale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating changed locales: %w", err)
	}

	return locales, nil
}

func (r *changeSignalRepository) ClearChangedLocale(locale string) error {
	_, err := r.db.Exec("DELETE FROM locale_changes WHERE locale = ?", locale)
	if err != nil {
		return fmt.Errorf("failed to clear changed locale: %w", err)
	}
	return nil
}
