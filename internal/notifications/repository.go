// Package notifications persists a delivery log for account notifications.
package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/skillproof/backend/pkg/database"
)

// Delivery statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Log is one delivery attempt.
type Log struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject,omitempty"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Repository handles notification_logs persistence.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a notification log repository.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// Record inserts l and fills its ID and CreatedAt.
func (r *Repository) Record(ctx context.Context, l *Log) error {
	const q = `INSERT INTO notification_logs (user_id, recipient_email, subject, status, error_message)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''))
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, q, l.UserID, l.RecipientEmail, l.Subject, l.Status, l.ErrorMessage).
		Scan(&l.ID, &l.CreatedAt)
	return database.Translate(err)
}

// ListByUser returns a user's delivery log, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Log, error) {
	const q = `SELECT id, user_id, recipient_email, subject, status, error_message, created_at
		FROM notification_logs
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*Log
	for rows.Next() {
		var l Log
		var subject, errMsg *string
		if err := rows.Scan(&l.ID, &l.UserID, &l.RecipientEmail, &subject, &l.Status, &errMsg, &l.CreatedAt); err != nil {
			return nil, err
		}
		if subject != nil {
			l.Subject = *subject
		}
		if errMsg != nil {
			l.ErrorMessage = *errMsg
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
