package commonModels

// ChunkRecord is the atomic unit stored in the vector store. All records of one
// document share the same DocID, Filepath and Filename; ChunkID is unique per owner.
type ChunkRecord struct {
	DocID     string    `json:"doc_id"`
	ChunkID   string    `json:"chunk_id"`
	OwnerID   string    `json:"owner_id"`
	Filepath  string    `json:"filepath"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// DocumentInfo is one distinct ingested document of a tenant, deduplicated
// across that document's many chunks.
type DocumentInfo struct {
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	OwnerID  string `json:"owner_id"`
}

// IngestResult is the structured outcome of a single document ingestion.
// A failed ingestion never propagates an unhandled fault to the caller.
type IngestResult struct {
	Success  bool   `json:"success"`
	DocID    string `json:"doc_id,omitempty"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

// OpResult is the outcome of delete/reset style operations.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// QueryResult carries the generated answer plus the deduplicated source
// filenames that contributed to the retrieved context.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
