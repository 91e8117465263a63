package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "ERROR"

	IngestInit  InternalStatus = "Init"
	Extracting  InternalStatus = "Extracting"
	Chunking    InternalStatus = "Chunking"
	Embedding   InternalStatus = "Embedding"
	DeletingOld InternalStatus = "DeletingOld"
	Inserting   InternalStatus = "Inserting"
	Done        InternalStatus = "Done"
	Failed      InternalStatus = "Failed"
)

// Job is one background ingestion request. Status moves QUEUED -> RUNNING ->
// COMPLETE/ERROR; CurrentStep tracks the pipeline stage for progress reporting.
type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	OwnerID     string         `json:"owner_id"`
	Username    string         `json:"username"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
	Progress    float64        `json:"progress"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	IngestFileName string `json:"ingest_file_name,omitempty"`
	IngestPath     string `json:"ingest_path,omitempty"`
	DocID          string `json:"doc_id,omitempty"`
	Message        string `json:"message,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
