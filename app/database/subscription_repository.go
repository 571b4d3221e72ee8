package database

import (
	"database/sql"
	"fmt"
)

type subscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetSubscription(chatID int64) (*Subscription, error) {
	var sub Subscription
	var lastSeen sql.NullInt64
	err := r.db.QueryRow(`
		SELECT chat_id, locale, last_seen_id
		FROM subscriptions
		WHERE chat_id = ?
	`, chatID).Scan(&sub.ChatID, &sub.Locale, &lastSeen)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	if lastSeen.Valid {
		sub.LastSeenID = &lastSeen.Int64
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetSubscribersForLocale(locale string) ([]Subscription, error) {
	rows, err := r.db.Query(`
		SELECT chat_id, locale, last_seen_id
		FROM subscriptions
		WHERE locale = ?
		ORDER BY chat_id
	`, locale)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscribers: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var lastSeen sql.NullInt64
		if err := rows.Scan(&sub.ChatID, &sub.Locale, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		if lastSeen.Valid {
			sub.LastSeenID = &lastSeen.Int64
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	return subs, nil
}

func (r *subscriptionRepository) GetSubscriberCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM subscriptions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get subscriber count: %w", err)
	}
	return count, nil
}

// UpsertSubscription creates a subscription or switches an existing one to a
// new locale. Switching resets the cursor: the subscriber has seen nothing
// of the new locale's ledger yet.
func (r *subscriptionRepository) UpsertSubscription(chatID int64, locale string) error {
	_, err := r.db.Exec(`
		INSERT INTO subscriptions (chat_id, locale, last_seen_id)
		VALUES (?, ?, NULL)
		ON CONFLICT (chat_id) DO UPDATE SET
			locale = excluded.locale,
			last_seen_id = CASE WHEN subscriptions.locale = excluded.locale
				THEN subscriptions.last_seen_id ELSE NULL END,
			updated_at = datetime('now')
	`, chatID, locale)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) DeleteSubscription(chatID int64) error {
	_, err := r.db.Exec("DELETE FROM subscriptions WHERE chat_id = ?", chatID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// AdvanceCursor moves a delivery cursor forward. The MAX guard keeps the
// cursor monotonic even if a stale delivery attempt completes late.
func (r *subscriptionRepository) AdvanceCursor(chatID int64, lastSeenID int64) error {
	_, err := r.db.Exec(`
		UPDATE subscriptions
		SET last_seen_id = MAX(COALESCE(last_seen_id, 0), ?),
		    updated_at = datetime('now')
		WHERE chat_id = ?
	`, lastSeenID, chatID)
	if err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}
	return nil
}
