package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
)

func TestTempStorage_StoreAndUpdate(t *testing.T) {
	s := NewTempStorage(time.Minute)
	id := GenerateJobID()

	s.StoreJob(&domain.ExtractionJob{JobID: id, Status: domain.StatusProcessing, CreatedAt: time.Now()})
	s.UpdateJob(id, func(j *domain.ExtractionJob) { j.Status = domain.StatusCompleted })

	job := s.GetJob(id)
	require.NotNil(t, job)
	assert.Equal(t, domain.StatusCompleted, job.Status)

	// snapshots are detached from the stored job
	job.Status = domain.StatusFailed
	assert.Equal(t, domain.StatusCompleted, s.GetJob(id).Status)

	s.DeleteJob(id)
	assert.Nil(t, s.GetJob(id))
}

func TestTempStorage_Expiry(t *testing.T) {
	s := NewTempStorage(time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.StoreJob(&domain.ExtractionJob{JobID: "old", CreatedAt: now.Add(-2 * time.Minute)})
	s.StoreJob(&domain.ExtractionJob{JobID: "fresh", CreatedAt: now.Add(-30 * time.Second)})

	assert.Nil(t, s.GetJob("old"))
	assert.NotNil(t, s.GetJob("fresh"))
	assert.Equal(t, 2, s.Len())

	s.Cleanup()
	assert.Equal(t, 1, s.Len())
}

func TestGenerateJobID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateJobID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestZeroBytes(t *testing.T) {
	b := []byte("sensitive image data")
	ZeroBytes(b)
	for _, v := range b {
		assert.Zero(t, v)
	}
}
