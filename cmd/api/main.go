// @title           DocVault RAG API
// @version         1.0
// @description     Multi-tenant PDF ingestion and retrieval-augmented query API
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/data/store"
	jobmodel "docvault/internal/domain/jobModel"
	"docvault/internal/handlers"
	"docvault/internal/job"
	"docvault/internal/middleware"
	"docvault/internal/rag"
	"docvault/internal/rag/embedding/googleEmbedding"
	"docvault/internal/rag/gate"
	"docvault/internal/rag/llm/gemini"
	"docvault/internal/rag/vectorDB/qdrantDB"
	"docvault/internal/server"
	"docvault/internal/storagepath"
	"docvault/internal/worker"
	"docvault/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using process environment")
	}
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	if config.SecretKey() == "" {
		logger.Error("RAG_SECRET_KEY is not set. Shutting down.")
		return
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	if redisJobStore := store.GetRedisJobStore(serviceContext); redisJobStore != nil {
		serviceConfig.JobStore = redisJobStore
	} else {
		logger.Error("Redis store is offline, falling back to in-memory job store")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	service := job.InitJobService(serviceConfig)

	//auth
	authStore, err := auth.NewStore(config.AuthDBPath(), config.SecretKey())
	if err != nil {
		logger.Error("Could not open auth store. Shutting down.", "error", err)
		return
	}
	defer authStore.Close()
	if err := authStore.Init(serviceContext); err != nil {
		logger.Error("Could not initialize auth schema. Shutting down.", "error", err)
		return
	}

	//external services
	vectorDB, err := qdrantDB.NewClient(serviceContext)
	if err != nil {
		logger.Error("Vector DB failed to initialize. Shutting down.", "error", err)
		return
	}
	if err := vectorDB.EnsureSchema(serviceContext); err != nil {
		logger.Error("Vector DB schema setup failed. Shutting down.", "error", err)
		return
	}

	embeddingService, err := googleEmbedding.NewClient(serviceContext, config.GoogleEmbeddingModel, config.GeminiAPIKey())
	if err != nil {
		logger.Error("Embedding client failed to initialize. Shutting down.", "error", err)
		return
	}
	llmProvider, err := gemini.NewClient(serviceContext, config.GeminiModelName, config.GeminiAPIKey())
	if err != nil {
		logger.Error("LLM client failed to initialize. Shutting down.", "error", err)
		return
	}

	storageManager := storagepath.NewManager(config.DataPath())
	ragService := rag.NewService(vectorDB, llmProvider, embeddingService, gate.New(), storageManager)

	handlers.InitJobHandler(service)
	handlers.InitRequestHandler(ragService, storageManager)
	handlers.InitAuthHandler(authStore)
	middleware.InitAuth(authStore)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
