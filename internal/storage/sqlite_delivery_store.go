package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteDeliveryStore implements DeliveryStore backed by SQLite.
type SQLiteDeliveryStore struct {
	db *sql.DB
}

// NewSQLiteDeliveryStore returns a new SQLiteDeliveryStore.
func NewSQLiteDeliveryStore(db *sql.DB) *SQLiteDeliveryStore {
	return &SQLiteDeliveryStore{db: db}
}

// LogDelivery inserts a delivery record into the database.
func (s *SQLiteDeliveryStore) LogDelivery(ctx context.Context, entry DeliveryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_log (notification_id, origin, recipient, transport, subject, status, error_msg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.NotificationID, entry.Origin, entry.Recipient, entry.Transport,
		entry.Subject, entry.Status, entry.ErrorMsg, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}
	return nil
}

// ListDeliveries returns the most recent entries ordered by insertion descending.
func (s *SQLiteDeliveryStore) ListDeliveries(ctx context.Context, limit int) ([]DeliveryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, notification_id, origin, recipient, transport, subject, status, error_msg, created_at
		FROM delivery_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying delivery log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []DeliveryEntry
	for rows.Next() {
		var e DeliveryEntry
		if err := rows.Scan(&e.ID, &e.NotificationID, &e.Origin, &e.Recipient,
			&e.Transport, &e.Subject, &e.Status, &e.ErrorMsg, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning delivery log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delivery log rows: %w", err)
	}
	return entries, nil
}
