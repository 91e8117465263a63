package adapter

import (
	"fmt"
	"time"

	"docvault/internal/api"
	"docvault/internal/domain/commonModels"
	"docvault/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		Progress:    job.Progress,
		DocID:       job.JobPayload.DocID,
		Message:     job.JobPayload.Message,
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToQueryResponse(question string, result commonModels.QueryResult) api.QueryResponse {
	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	return api.QueryResponse{
		Question: question,
		Answer:   result.Answer,
		Sources:  sources,
	}
}

func ToDocumentListResponse(docs []commonModels.DocumentInfo) api.DocumentListResponse {
	entries := make([]api.DocumentEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, api.DocumentEntry{
			DocID:    d.DocID,
			Filename: d.Filename,
		})
	}
	return api.DocumentListResponse{Documents: entries, Count: len(entries)}
}

func ToOperationResponse(result commonModels.OpResult) api.OperationResponse {
	return api.OperationResponse{
		Success: result.Success,
		Message: result.Message,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
