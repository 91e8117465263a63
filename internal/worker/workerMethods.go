package worker

import (
	"context"
	"sync/atomic"
	"time"

	"docvault/internal/config"
	jobmodel "docvault/internal/domain/jobModel"
	"docvault/internal/metrics"
)

// executeJob runs one ingestion end to end. The rag service drives the
// pipeline; each progress callback is persisted so /status polling reflects
// the step the job is actually on.
func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()
	logger.Debug("Processing job", "jobId", job.Id, "traceId", job.TraceId)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	job = _ragService.IngestDocument(ctx, job, func(update jobmodel.Job) {
		saveJobState(ctx, update, jobmodel.JobStatusRunning)
	})

	// the rag service already marked the job complete or failed
	job.EndTime = time.Now()
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to persist final job state", "err", err)
	}
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
