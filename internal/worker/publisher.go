package worker

import (
	"context"

	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/queue"
)

// Enqueuer is the producer side of queue.Queue.
type Enqueuer interface {
	EnqueueDomainApproved(ctx context.Context, payload queue.DomainApprovedPayload) error
}

// QueuePublisher hands approval events to the notification queue.
type QueuePublisher struct {
	q Enqueuer
}

// NewQueuePublisher creates a publisher over q.
func NewQueuePublisher(q Enqueuer) *QueuePublisher {
	return &QueuePublisher{q: q}
}

// PublishDomainApproved implements verification.Publisher.
func (p *QueuePublisher) PublishDomainApproved(ctx context.Context, ev verification.DomainApproved) error {
	return p.q.EnqueueDomainApproved(ctx, queue.DomainApprovedPayload{
		RequestID:        ev.RequestID,
		Kind:             string(ev.Kind),
		Domain:           ev.Domain,
		OrganizationID:   ev.OrganizationID,
		OrganizationName: ev.OrganizationName,
		SubmittedBy:      ev.SubmittedBy,
		ApprovedBy:       ev.ApprovedBy,
		VerifiedUserIDs:  ev.VerifiedUserIDs,
		ApprovedAt:       ev.ApprovedAt,
	})
}
