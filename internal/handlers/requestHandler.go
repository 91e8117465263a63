package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"docvault/internal/adapter"
	"docvault/internal/adapter/utils"
	"docvault/internal/api"
	"docvault/internal/config"
	"docvault/internal/rag"
	"docvault/internal/storagepath"
	"docvault/pkg/logger_i"
)

var (
	logRH       *logger_i.Logger
	_ragService rag.Service
	_storage    *storagepath.Manager
)

type newJobData struct {
	id           string
	traceId      string
	ownerID      string
	username     string
	documentName string
	documentPath string
}

func InitRequestHandler(ragService rag.Service, storage *storagepath.Manager) {
	_ragService = ragService
	_storage = storage
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// UploadHandler godoc
// @Summary      Upload a PDF for ingestion
// @Description  Receives a file via multipart/form-data, saves it under the caller's tenant directory, and queues an ingestion job. Re-uploading a file with the same name replaces the previously ingested version.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The PDF file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - poll the status URL"
// @Failure      400  {object}  api.JobResponse "Missing file, not a PDF, or file too large"
// @Failure      500  {object}  api.JobResponse "Storage or Write Error"
// @Security     BearerAuth
// @Router       /rag/upload [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		identity, ok := identityFrom(r.Context())
		if !ok {
			WriteErrorResponse(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}

		err := r.ParseMultipartForm(config.MaxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		fileReader, fileMetadata, err := r.FormFile("file")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		filename := filepath.Base(fileMetadata.Filename)
		if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
			WriteErrorResponse(w, http.StatusBadRequest, filename, "Only PDF files are accepted")
			return
		}

		targetDir, err := _storage.UserDir(identity.Username)
		if err != nil {
			logRH.Error("Couldn't get tenant directory", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, filename, "Storage error")
			return
		}

		//same filename means same doc id, so a re-upload overwrites the old
		//file and the ingestion job replaces the old chunks
		destPath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(destPath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, filename, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, filename, "Write error")
			return
		}

		newJob := newJobData{
			id:           utils.GetNewUUID(),
			traceId:      r.Context().Value(config.TRACE_ID_KEY).(string),
			ownerID:      identity.ID,
			username:     identity.Username,
			documentName: filename,
			documentPath: destPath,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// QueryHandler godoc
// @Summary      Ask a question over the caller's documents
// @Description  Embeds the question, retrieves the most relevant chunks from the caller's ingested documents, and generates a grounded answer.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "The question to answer"
// @Success      200  {object}  api.QueryResponse "Answer with source filenames"
// @Failure      400  {object}  api.JobResponse "Missing or empty question"
// @Failure      404  {object}  api.JobResponse "No documents ingested for this user"
// @Security     BearerAuth
// @Router       /rag/query [post]
func QueryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		identity, ok := identityFrom(r.Context())
		if !ok {
			WriteErrorResponse(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}

		var requestData api.QueryRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Query handler reader :", err)
			}
		}(r.Body)
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Question == "" {
			logRH.Warn("Bad Query Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		result, err := _ragService.Answer(r.Context(), requestData.Question, identity.ID)
		if errors.Is(err, rag.ErrNoDocuments) {
			WriteErrorResponse(w, http.StatusNotFound, "", "No documents found. Please ingest documents first.")
			return
		}
		if err != nil {
			logRH.Error("Query failed", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Query processing failed")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(requestData.Question, result))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// ListDocumentsHandler godoc
// @Summary      List ingested documents
// @Description  Returns one entry per distinct document the caller has ingested.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Security     BearerAuth
// @Router       /rag/documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		identity, ok := identityFrom(r.Context())
		if !ok {
			WriteErrorResponse(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}

		docs, err := _ragService.ListDocuments(r.Context(), identity.ID)
		if err != nil {
			logRH.Error("Listing documents failed", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list documents")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DeleteDocumentHandler godoc
// @Summary      Delete one document
// @Description  Removes every chunk of the named document from the caller's knowledge base and compacts the store.
// @Tags         Documents
// @Produce      json
// @Param        docID  path  string  true  "Document ID (filename without extension)"
// @Success      200  {object}  api.OperationResponse
// @Failure      500  {object}  api.JobResponse
// @Security     BearerAuth
// @Router       /rag/documents/{docID} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		identity, ok := identityFrom(r.Context())
		if !ok {
			WriteErrorResponse(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}

		docID := utils.GetChiURLParam(r, "docID")
		if docID == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "docID is required")
			return
		}

		result := _ragService.DeleteDocument(r.Context(), docID, identity.ID)
		if !result.Success {
			writeJsonResponse(w, http.StatusInternalServerError, adapter.ToOperationResponse(result))
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToOperationResponse(result))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// ResetHandler godoc
// @Summary      Reset the caller's knowledge base
// @Description  Deletes every chunk and stored file belonging to the caller, then compacts the store and purges retained history.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.OperationResponse
// @Failure      500  {object}  api.JobResponse
// @Security     BearerAuth
// @Router       /rag/reset [post]
func ResetHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		identity, ok := identityFrom(r.Context())
		if !ok {
			WriteErrorResponse(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}

		result := _ragService.ResetKnowledgeBase(r.Context(), identity.ID)
		if !result.Success {
			writeJsonResponse(w, http.StatusInternalServerError, adapter.ToOperationResponse(result))
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToOperationResponse(result))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific ingestion job using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found"
// @Security     BearerAuth
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		identity, ok := identityFrom(r.Context())
		if !ok {
			WriteErrorResponse(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}

		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		// another tenant's job reads as absent; a job id must not leak
		// filenames or errors across owners
		if !isFound || result.OwnerID != identity.ID {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}
