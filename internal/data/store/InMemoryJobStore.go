package store

import (
	"context"
	"sync"

	"docvault/internal/domain/jobModel"
)

// InMemoryJobStore is the fallback when redis is offline. Job status then
// only survives as long as the process does.
type InMemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]jobModel.Job
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{jobs: make(map[string]jobModel.Job)}
}

func (s *InMemoryJobStore) SaveJob(_ context.Context, job jobModel.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Id] = job
	return nil
}

func (s *InMemoryJobStore) GetJob(_ context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobId]
	return job, ok
}

func (s *InMemoryJobStore) DeleteJob(_ context.Context, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}
