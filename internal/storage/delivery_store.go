package storage

import (
	"context"
	"time"
)

// Delivery statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// DeliveryEntry records a single per-recipient send attempt.
type DeliveryEntry struct {
	ID             int64     `json:"id"`
	NotificationID string    `json:"notification_id"`
	Origin         string    `json:"origin"`
	Recipient      string    `json:"recipient"`
	Transport      string    `json:"transport"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	ErrorMsg       string    `json:"error_msg"`
	CreatedAt      time.Time `json:"created_at"`
}

// DeliveryStore defines the interface for persisting the delivery audit log.
type DeliveryStore interface {
	// LogDelivery records a send attempt.
	LogDelivery(ctx context.Context, entry DeliveryEntry) error
	// ListDeliveries returns the most recent entries, up to limit.
	ListDeliveries(ctx context.Context, limit int) ([]DeliveryEntry, error)
}
