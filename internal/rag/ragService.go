package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"docvault/internal/domain/commonModels"
	"docvault/internal/domain/jobModel"
	"docvault/internal/metrics"
	"docvault/internal/rag/embedding"
	"docvault/internal/rag/gate"
	"docvault/internal/rag/ingest"
	"docvault/internal/rag/llm"
	"docvault/internal/rag/vectorDB"
	"docvault/internal/storagepath"
	"docvault/pkg/logger_i"
)

// ErrNoDocuments is the not-found condition: the tenant has nothing retrievable
// for the question. Distinct from a query processing failure.
var ErrNoDocuments = errors.New("no documents found for this user")

// Service is the public contract the worker and handlers program against.
// Every mutating operation (ingest, delete, reset) holds the exclusive gate
// for its full duration, and so does Answer: the store promises no snapshot
// isolation between a concurrent writer and reader, so queries serialize too.
type Service interface {
	IngestDocument(ctx context.Context, job jobModel.Job, onProgress func(jobModel.Job)) jobModel.Job
	Answer(ctx context.Context, question, ownerID string) (commonModels.QueryResult, error)
	ListDocuments(ctx context.Context, ownerID string) ([]commonModels.DocumentInfo, error)
	DeleteDocument(ctx context.Context, docID, ownerID string) commonModels.OpResult
	ResetKnowledgeBase(ctx context.Context, ownerID string) commonModels.OpResult
}

type service struct {
	vectorDB    vectorDB.Store
	llmProvider llm.Provider
	embedder    embedding.Embedder
	ingestor    *ingest.Ingestor
	gate        *gate.Gate
	storage     *storagepath.Manager
	logger      *logger_i.Logger
}

func NewService(store vectorDB.Store, provider llm.Provider, em embedding.Embedder, g *gate.Gate, storage *storagepath.Manager) Service {
	return &service{
		vectorDB:    store,
		llmProvider: provider,
		embedder:    em,
		ingestor:    ingest.NewIngestor(store, em),
		gate:        g,
		storage:     storage,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job, onProgress func(jobModel.Job)) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	log := s.logger.TraceLogger(ctx).With("jobId", job.Id)

	if err := s.gate.Acquire(ctx); err != nil {
		return s.jobError(job, err, "gate acquisition cancelled")
	}
	defer s.gate.Release()

	result := s.ingestor.IngestDocument(ctx, job.JobPayload.IngestPath, job.OwnerID, func(step jobModel.InternalStatus, fraction float64) {
		job.CurrentStep = step
		job.Progress = fraction
		if onProgress != nil {
			onProgress(job)
		}
	})

	job.JobPayload.Message = result.Message
	if !result.Success {
		return s.jobError(job, result.Err, result.Message)
	}

	job.JobPayload.DocID = result.DocID
	job.Status = jobModel.JobStatusComplete
	log.Info("ingestion job finished", "docId", result.DocID)
	return job
}

func (s *service) Answer(ctx context.Context, question, ownerID string) (commonModels.QueryResult, error) {
	log := s.logger.TraceLogger(ctx).With("ownerId", ownerID)

	if err := s.gate.Acquire(ctx); err != nil {
		return commonModels.QueryResult{}, err
	}
	defer s.gate.Release()

	vector, err := s.executeEmbeddingStep(ctx, question)
	if err != nil {
		log.Error("query embedding failed", "error", err)
		return commonModels.QueryResult{}, fmt.Errorf("query embedding failed: %w", err)
	}

	records, err := s.executeVectorSearchStep(ctx, vector, ownerID)
	if err != nil {
		log.Error("vector search failed", "error", err)
		return commonModels.QueryResult{}, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(records) == 0 {
		return commonModels.QueryResult{}, ErrNoDocuments
	}

	answer, err := s.executeLLMStep(ctx, question, records)
	if err != nil {
		log.Error("generation failed", "error", err)
		return commonModels.QueryResult{}, fmt.Errorf("answer generation failed: %w", err)
	}

	return commonModels.QueryResult{
		Answer:  answer,
		Sources: sourceFilenames(records),
	}, nil
}

func (s *service) ListDocuments(ctx context.Context, ownerID string) ([]commonModels.DocumentInfo, error) {
	// reads take no gate; a concurrent mutation means a possibly-stale
	// snapshot, which is accepted
	return s.vectorDB.ListDocuments(ctx, ownerID)
}

func (s *service) DeleteDocument(ctx context.Context, docID, ownerID string) commonModels.OpResult {
	log := s.logger.TraceLogger(ctx).With("docId", docID, "ownerId", ownerID)

	if err := s.gate.Acquire(ctx); err != nil {
		return commonModels.OpResult{Success: false, Message: fmt.Sprintf("Failed to delete document: %v", err)}
	}
	defer s.gate.Release()

	// advisory cleanup first: the artifact path only exists in the records
	if txtPath, found, err := s.vectorDB.DocumentFilepath(ctx, docID, ownerID); err == nil && found {
		s.storage.RemoveArtifacts(txtPath)
	}

	if err := s.vectorDB.Delete(ctx, docID, ownerID); err != nil {
		log.Error("delete failed", "error", err)
		return commonModels.OpResult{Success: false, Message: fmt.Sprintf("Failed to delete document: %v", err)}
	}
	if err := s.vectorDB.Compact(ctx); err != nil {
		log.Error("compaction failed", "error", err)
		return commonModels.OpResult{Success: false, Message: fmt.Sprintf("Failed to delete document: %v", err)}
	}

	return commonModels.OpResult{Success: true, Message: fmt.Sprintf("Successfully deleted document: %s", docID)}
}

func (s *service) ResetKnowledgeBase(ctx context.Context, ownerID string) commonModels.OpResult {
	log := s.logger.TraceLogger(ctx).With("ownerId", ownerID)

	if err := s.gate.Acquire(ctx); err != nil {
		return commonModels.OpResult{Success: false, Message: fmt.Sprintf("Failed to reset knowledge base: %v", err)}
	}
	defer s.gate.Release()

	paths, err := s.vectorDB.OwnerFilepaths(ctx, ownerID)
	if err != nil {
		log.Error("reading tenant filepaths failed", "error", err)
		return commonModels.OpResult{Success: false, Message: fmt.Sprintf("Failed to reset knowledge base: %v", err)}
	}
	for _, txtPath := range paths {
		s.storage.RemoveArtifacts(txtPath)
		s.storage.PruneUserDir(txtPath)
	}

	if err := s.vectorDB.DeleteOwner(ctx, ownerID); err != nil {
		log.Error("tenant delete failed", "error", err)
		return commonModels.OpResult{Success: false, Message: fmt.Sprintf("Failed to reset knowledge base: %v", err)}
	}
	if err := s.vectorDB.Compact(ctx); err != nil {
		log.Error("compaction failed", "error", err)
		return commonModels.OpResult{Success: false, Message: fmt.Sprintf("Failed to reset knowledge base: %v", err)}
	}
	// make the deletion final: drop retained snapshots too
	if err := s.vectorDB.PurgeHistory(ctx); err != nil {
		log.Error("history purge failed", "error", err)
		return commonModels.OpResult{Success: false, Message: fmt.Sprintf("Failed to reset knowledge base: %v", err)}
	}

	return commonModels.OpResult{Success: true, Message: "Knowledge base has been completely reset"}
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "error", err, "jobId", job.Id)
	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   true,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Failed
	return job
}
