package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
)

// TempStorage keeps extraction jobs in memory until they expire.
// Images themselves are never stored; only the extracted fields are.
type TempStorage struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ExtractionJob
	ttl  time.Duration
	now  func() time.Time
}

// NewTempStorage creates a new in-memory job store with the given TTL
func NewTempStorage(ttl time.Duration) *TempStorage {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TempStorage{
		jobs: make(map[string]*domain.ExtractionJob),
		ttl:  ttl,
		now:  time.Now,
	}
}

// StartCleanup evicts expired jobs every ttl/2 until ctx is done.
func (s *TempStorage) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// GenerateJobID returns a random job identifier
func GenerateJobID() string {
	return uuid.NewString()
}

// StoreJob stores a copy of the job
func (s *TempStorage) StoreJob(job *domain.ExtractionJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.JobID] = &cp
}

// GetJob returns a snapshot of the job, or nil when unknown or expired.
func (s *TempStorage) GetJob(jobID string) *domain.ExtractionJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok || s.expired(job) {
		return nil
	}
	cp := *job
	return &cp
}

// UpdateJob applies update to a stored job under the write lock
func (s *TempStorage) UpdateJob(jobID string, update func(*domain.ExtractionJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		update(job)
	}
}

// DeleteJob removes a job from storage
func (s *TempStorage) DeleteJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// Len returns the number of stored jobs, expired ones included
func (s *TempStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs
func (s *TempStorage) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if s.expired(job) {
			delete(s.jobs, id)
		}
	}
}

func (s *TempStorage) expired(job *domain.ExtractionJob) bool {
	return job.CreatedAt.Before(s.now().Add(-s.ttl))
}

// ZeroBytes overwrites a byte slice so uploaded document images do not
// linger in memory after processing.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
