package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"docvault/internal/config"
	"docvault/internal/job"
	"docvault/internal/metrics"
	"docvault/internal/rag"
	"docvault/pkg/logger_i"
)

// The pool drains ingestion jobs from the job channel. It starts with one
// worker; every accepted upload signals the dispatcher, which grows the pool
// up to MaxWorkerCount while uploads keep arriving. Since ingestions serialize
// behind the exclusive gate anyway, extra workers mostly absorb queue bursts.
// A worker idle past idleWorkerTimeout retires unless that would drop the pool
// below the floor, so between bursts the pool shrinks back to MinWorkerCount.

var (
	_jobService        *job.Service
	_ragService        rag.Service
	dispatcherChannel  chan bool
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	minWorkerCount     = config.MinWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
	logger             *logger_i.Logger
)

func InitServices(jobService *job.Service, ragService rag.Service) {
	_jobService = jobService
	_ragService = ragService
	dispatcherChannel = jobService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logger_i.NewLogger("WorkerPool")
	logger.Info("Initializing ingestion worker pool")
	go dispatcher()
}

func dispatcher() {
	createWorker()
	logger.Info("Dispatcher started")
	for range dispatcherChannel {
		if atomic.LoadInt64(&currentWorkerCount) >= config.MaxWorkerCount {
			continue
		}
		logger.Info("Scaling up ingestion workers", "workerCount", atomic.LoadInt64(&currentWorkerCount))
		createWorker()
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go worker()
	logger.Info("Created new worker")
}

func worker() {
	for {
		select {
		case currentJob := <-_jobService.JobChannel:
			executeJob(currentJob)
			metrics.DecrementJobsInQueue()

		case <-stopWorkerChannel:
			removeWorker("stop signal received")
			return

		case <-time.After(idleWorkerTimeout):
			// shrink toward the floor, never below it
			if atomic.LoadInt64(&currentWorkerCount) > atomic.LoadInt64(&minWorkerCount) {
				removeWorker("idle timeout")
				return
			}
		}
	}
}
