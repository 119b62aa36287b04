package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/pkg/queue"
)

// JobQueue is the subset of queue.Queue the processor uses.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// UserLookup loads recipients.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notification is one message to one account.
type Notification struct {
	UserID  uuid.UUID
	To      string
	Subject string
	Body    string
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotificationProcessor turns domain approval jobs into per-user notifications.
type NotificationProcessor struct {
	queue    JobQueue
	users    UserLookup
	notifier Notifier
	logger   *zap.Logger
	backoff  time.Duration
}

// NewNotificationProcessor creates a notification processor.
func NewNotificationProcessor(q JobQueue, users UserLookup, notifier Notifier, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{queue: q, users: users, notifier: notifier, logger: logger, backoff: queue.RetryBackoff}
}

// SetBackoff overrides the pause after a failed job.
func (p *NotificationProcessor) SetBackoff(d time.Duration) { p.backoff = d }

// Process executes one job. Users that no longer exist are skipped. On a
// failed delivery the job payload is rewritten to record who was already
// notified, so a retry only reaches the rest.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeDomainApproved {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.DomainApprovedPayload
	if err := job.Decode(&payload); err != nil {
		return err
	}

	done := make(map[uuid.UUID]bool, len(payload.Delivered))
	for _, id := range payload.Delivered {
		done[id] = true
	}
	recipients := append([]uuid.UUID{payload.SubmittedBy}, payload.VerifiedUserIDs...)
	sent := 0
	for _, id := range recipients {
		if done[id] {
			continue
		}
		delivered, err := p.notify(ctx, id, payload)
		if err != nil {
			if encErr := job.Encode(payload); encErr != nil {
				p.logger.Error("record delivered recipients", zap.String("job_id", job.ID), zap.Error(encErr))
			}
			return err
		}
		done[id] = true
		payload.Delivered = append(payload.Delivered, id)
		if delivered {
			sent++
		}
	}
	p.logger.Info("domain approval notifications sent",
		zap.String("request_id", payload.RequestID.String()),
		zap.String("domain", payload.Domain),
		zap.Int("sent", sent),
	)
	return nil
}

// notify reports false without error when the recipient no longer exists.
func (p *NotificationProcessor) notify(ctx context.Context, id uuid.UUID, payload queue.DomainApprovedPayload) (bool, error) {
	u, err := p.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		p.logger.Warn("notification recipient missing", zap.String("user_id", id.String()))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load recipient %s: %w", id, err)
	}
	n := Notification{
		UserID:  u.ID,
		To:      u.Email,
		Subject: "Your account has been verified",
		Body: fmt.Sprintf("Hello %s, %s (%s) has been verified. You can now sign in.",
			u.FirstName, payload.OrganizationName, payload.Domain),
	}
	if err := p.notifier.Notify(ctx, n); err != nil {
		return false, fmt.Errorf("notify %s: %w", u.Email, err)
	}
	return true, nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			sleep(ctx, p.backoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			sleep(ctx, p.backoff)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
