package store

import (
	"context"
	"encoding/json"

	"docvault/internal/config"
	"docvault/internal/data/redisStore"
	"docvault/internal/domain/jobModel"
	"docvault/pkg/logger_i"
)

// RedisJobStore persists ingestion job status so an upload's outcome stays
// queryable after the request that accepted it has returned.
type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisJobStore(ctx context.Context) *RedisJobStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisJobStore)
	if inner == nil {
		return nil
	}
	return &RedisJobStore{
		store:  inner,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, job.Id, data, config.RedisJobStoreTTL)
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job

	val, err := s.store.Get(ctx, jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		s.logger.Error("Error fetching job from Redis", "jobId", jobId, "error", err)
		return job, false
	}

	if err := json.Unmarshal([]byte(val), &job); err != nil {
		s.logger.Error("Error decoding job", "jobId", jobId, "error", err)
		return job, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	if err := s.store.Del(ctx, jobID); err != nil {
		s.logger.Error("Error deleting job from Redis", "jobId", jobID, "error", err)
	}
}

// TestJobStore builds a store on an injected redis client. Tests only.
func TestJobStore(store *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
