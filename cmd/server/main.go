package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dceo-backend/internal/config"
	"dceo-backend/internal/database"
	"dceo-backend/internal/gateway"
	"dceo-backend/internal/handlers"
	"dceo-backend/internal/middleware"
	"dceo-backend/internal/repository"
	"dceo-backend/internal/router"
	"dceo-backend/internal/services"
	"dceo-backend/internal/websocket"
	"dceo-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting DCEO Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 5: Initialize Gateway Client ────
	var gatewayClient gateway.Client
	switch cfg.GatewayMode {
	case "gemini":
		geminiClient, err := gateway.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiClient.Close()
		gatewayClient = geminiClient
		log.Println("✓ Gateway client initialized (gemini)")
	default:
		gatewayClient = gateway.NewHTTPClient(cfg.GatewayBaseURL, time.Duration(cfg.GatewayTimeoutSec)*time.Second)
		log.Printf("✓ Gateway client initialized (http: %s)", cfg.GatewayBaseURL)
	}

	// ──── Initialize Repositories ────
	engineerRepo := repository.NewEngineerRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)
	structureRepo := repository.NewStructureRepo(pool)
	knowledgeRepo := repository.NewKnowledgeRepo(pool)
	feedbackRepo := repository.NewFeedbackRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	events := services.NewEventPublisher(redisClients.PubSub)
	queue := services.NewRedisQueue(redisClients.Queue)
	authService := services.NewAuthService(engineerRepo, redisClients.Queue, jwtAuth)
	refinementService := services.NewRefinementService(gatewayClient, sessionRepo, messageRepo, structureRepo, queue, events)
	interviewService := services.NewInterviewService(gatewayClient, sessionRepo, messageRepo, refinementService, events)
	knowledgeService := services.NewKnowledgeService(knowledgeRepo, queue)
	feedbackService := services.NewFeedbackService(feedbackRepo)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	interviewHandler := handlers.NewInterviewHandler(interviewService)
	structureHandler := handlers.NewStructureHandler(refinementService)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	assistantHandler := handlers.NewAssistantHandler(gatewayClient)

	// ──── Step 6: Start Job Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		gatewayClient,
		knowledgeRepo,
		sessionRepo,
		structureRepo,
		events,
		cfg.WorkerCount,
	)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		interviewHandler,
		structureHandler,
		knowledgeHandler,
		feedbackHandler,
		assistantHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ DCEO Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
