package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"
	IDENTITY_KEY   = "identity"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200

	//embeddings are computed in fixed batches to bound peak memory
	EmbeddingBatchSize                  = 10
	EmbeddingOutputDimensionality int32 = 1536
	GoogleEmbeddingModel                = "gemini-embedding-001"
	GeminiModelName                     = "gemini-2.5-flash"

	//retrieval
	QueryTopK         = 50
	SnippetMaxChars   = 4000
	ChunkTableName    = "articles_chunks"
	ExtractionTimeout = 10 * time.Second

	SystemPrompt = "You are a professional analyst. Answer the user's question strictly based on the provided context. " +
		"If the answer is not found in the context, state that you do not know. " +
		"Keep responses concise and direct. Do not use markdown formatting or code blocks unless requested."

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	IngestJobTimeout                = 10 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost     = "localhost"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//auth
	TokenTTL = 24 * time.Hour

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	RedisJobStore    = 0
	RedisJobStoreTTL = 24 * time.Hour

	MaxUploadSize = 32 << 20 //32mb
)

// DataPath is the root under which per-tenant upload directories live.
func DataPath() string {
	if p := os.Getenv("DATA_PATH"); p != "" {
		return p
	}
	return "data"
}

// AuthDBPath is the SQLite file holding user credentials.
func AuthDBPath() string {
	if p := os.Getenv("AUTH_DB_PATH"); p != "" {
		return p
	}
	return "data/auth.db"
}

// SecretKey signs access tokens. The process refuses to start without it.
func SecretKey() string {
	return os.Getenv("RAG_SECRET_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}
