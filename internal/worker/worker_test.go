package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/notifications"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/queue"
)

// fakeQueue is an in-process JobQueue and Enqueuer.
type fakeQueue struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retried []*queue.Job
}

func (q *fakeQueue) EnqueueDomainApproved(_ context.Context, p queue.DomainApprovedPayload) error {
	job, err := queue.NewJob(queue.JobTypeDomainApproved, p)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Dequeue(ctx context.Context) (*queue.Job, string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, "", ctx.Err()
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, queue.QueueNotifications, nil
}

func (q *fakeQueue) Retry(_ context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	q.retried = append(q.retried, job)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []Notification
	err    error
	failTo string
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.failTo != "" && n.To == r.failTo {
		return errors.New("mailbox unavailable")
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func seedApproval(t *testing.T, mem *store.Memory, q *fakeQueue) {
	t.Helper()
	ctx := context.Background()
	engine := verification.NewEngine(mem, verification.Config{}, nil)
	engine.SetPublisher(NewQueuePublisher(q))

	admin := &models.User{Email: "root@skillproof.dev", Role: models.RoleAdmin}
	require.NoError(t, mem.Stores().Users.Create(ctx, admin))
	var reqID uuid.UUID
	for _, email := range []string{"b@newschool.edu", "x@newschool.edu"} {
		u := &models.User{Email: email, Role: models.RoleStudent, FirstName: "Test"}
		require.NoError(t, mem.RunInTx(ctx, func(st store.Stores) error {
			if err := st.Users.Create(ctx, u); err != nil {
				return err
			}
			res, err := engine.ResolveDomainAtRegistration(ctx, st, u, models.OrganizationClaim{
				Kind: models.OrgKindUniversity, Domain: "newschool.edu", Name: "New School",
			}, models.AffiliationDefaults{})
			if err == nil {
				reqID = res.PendingRequest.ID
			}
			return err
		}))
	}
	_, err := engine.ApprovePendingDomain(ctx, reqID, admin.ID, verification.ApprovalOverrides{})
	require.NoError(t, err)
}

func TestApprovalEventReachesEveryVerifiedUser(t *testing.T) {
	mem := store.NewMemory()
	q := &fakeQueue{}
	seedApproval(t, mem, q)
	require.Len(t, q.jobs, 1)

	n := &recordingNotifier{}
	p := NewNotificationProcessor(q, mem.Stores().Users, n, nil)
	job, _, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Process(context.Background(), job))

	var to []string
	for _, s := range n.sent {
		to = append(to, s.To)
	}
	assert.ElementsMatch(t, []string{"b@newschool.edu", "x@newschool.edu"}, to)
	assert.Contains(t, n.sent[0].Body, "New School")
}

func TestProcessRetryOnlyReachesUndelivered(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	q := &fakeQueue{}
	seedApproval(t, mem, q)
	job, _, err := q.Dequeue(ctx)
	require.NoError(t, err)

	n := &recordingNotifier{failTo: "x@newschool.edu"}
	p := NewNotificationProcessor(q, mem.Stores().Users, n, nil)
	require.Error(t, p.Process(ctx, job))
	require.Equal(t, 1, n.count())

	var payload queue.DomainApprovedPayload
	require.NoError(t, job.Decode(&payload))
	assert.Equal(t, []uuid.UUID{payload.SubmittedBy}, payload.Delivered)

	n.failTo = ""
	require.NoError(t, p.Process(ctx, job))

	var to []string
	for _, s := range n.sent {
		to = append(to, s.To)
	}
	assert.Equal(t, []string{"b@newschool.edu", "x@newschool.edu"}, to)
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewNotificationProcessor(&fakeQueue{}, store.NewMemory().Stores().Users, &recordingNotifier{}, nil)
	err := p.Process(context.Background(), &queue.Job{Type: "recording_upload"})
	assert.Error(t, err)
}

func TestRunRetriesFailedJobs(t *testing.T) {
	mem := store.NewMemory()
	q := &fakeQueue{}
	seedApproval(t, mem, q)

	n := &recordingNotifier{err: errors.New("smtp down")}
	p := NewNotificationProcessor(q, mem.Stores().Users, n, nil)
	p.SetBackoff(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.retried) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 1, q.retried[0].Attempt)
	assert.Zero(t, n.count())
}

type memRecorder struct {
	logs []*notifications.Log
	err  error
}

func (m *memRecorder) Record(_ context.Context, l *notifications.Log) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, l)
	return nil
}

func TestRecordingNotifierLogsOutcome(t *testing.T) {
	ctx := context.Background()
	rec := &memRecorder{}
	next := &recordingNotifier{}
	n := NewRecordingNotifier(next, rec, nil)

	require.NoError(t, n.Notify(ctx, Notification{UserID: uuid.New(), To: "a@uni.edu", Subject: "hi"}))
	next.err = errors.New("smtp down")
	require.Error(t, n.Notify(ctx, Notification{UserID: uuid.New(), To: "b@uni.edu"}))

	require.Len(t, rec.logs, 2)
	assert.Equal(t, notifications.StatusSent, rec.logs[0].Status)
	assert.Equal(t, notifications.StatusFailed, rec.logs[1].Status)
	assert.Equal(t, "smtp down", rec.logs[1].ErrorMessage)
}

func TestRecordingNotifierIgnoresLogFailure(t *testing.T) {
	n := NewRecordingNotifier(&recordingNotifier{}, &memRecorder{err: errors.New("db down")}, nil)
	assert.NoError(t, n.Notify(context.Background(), Notification{UserID: uuid.New(), To: "a@uni.edu"}))
}
