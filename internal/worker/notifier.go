package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/notifications"
)

// LogNotifier records notifications in the log instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs n.
func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.logger.Info("notification",
		zap.String("user_id", n.UserID.String()),
		zap.String("to", n.To),
		zap.String("subject", n.Subject),
	)
	return nil
}

// DeliveryRecorder persists delivery attempts.
type DeliveryRecorder interface {
	Record(ctx context.Context, l *notifications.Log) error
}

// RecordingNotifier delivers through next and records every attempt.
type RecordingNotifier struct {
	next     Notifier
	recorder DeliveryRecorder
	logger   *zap.Logger
}

// NewRecordingNotifier wraps next with a delivery log.
func NewRecordingNotifier(next Notifier, recorder DeliveryRecorder, logger *zap.Logger) *RecordingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingNotifier{next: next, recorder: recorder, logger: logger}
}

// Notify sends n and logs the outcome. A failed log write does not fail delivery.
func (r *RecordingNotifier) Notify(ctx context.Context, n Notification) error {
	sendErr := r.next.Notify(ctx, n)
	entry := &notifications.Log{
		UserID:         n.UserID,
		RecipientEmail: n.To,
		Subject:        n.Subject,
		Status:         notifications.StatusSent,
	}
	if sendErr != nil {
		entry.Status = notifications.StatusFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := r.recorder.Record(ctx, entry); err != nil {
		r.logger.Warn("record notification", zap.String("user_id", n.UserID.String()), zap.Error(err))
	}
	return sendErr
}
