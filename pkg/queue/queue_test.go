package queue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobDecode(t *testing.T) {
	in := DomainApprovedPayload{
		RequestID:       uuid.New(),
		Kind:            "university",
		Domain:          "newschool.edu",
		VerifiedUserIDs: []uuid.UUID{uuid.New(), uuid.New()},
	}
	job, err := NewJob(JobTypeDomainApproved, in)
	require.NoError(t, err)
	assert.Equal(t, JobTypeDomainApproved, job.Type)
	assert.Zero(t, job.Attempt)
	assert.NotEmpty(t, job.ID)

	var out DomainApprovedPayload
	require.NoError(t, job.Decode(&out))
	assert.Equal(t, in.RequestID, out.RequestID)
	assert.Equal(t, in.VerifiedUserIDs, out.VerifiedUserIDs)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	job := &Job{Type: JobTypeDomainApproved, Payload: []byte(`{"request_id": 42}`)}
	var out DomainApprovedPayload
	assert.Error(t, job.Decode(&out))
}

func TestEncodeKeepsEnvelope(t *testing.T) {
	job, err := NewJob(JobTypeDomainApproved, DomainApprovedPayload{Domain: "newschool.edu"})
	require.NoError(t, err)
	id := job.ID
	delivered := uuid.New()

	require.NoError(t, job.Encode(DomainApprovedPayload{Domain: "newschool.edu", Delivered: []uuid.UUID{delivered}}))

	var out DomainApprovedPayload
	require.NoError(t, job.Decode(&out))
	assert.Equal(t, id, job.ID)
	assert.Equal(t, []uuid.UUID{delivered}, out.Delivered)
}
