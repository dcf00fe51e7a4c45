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

	"golang.org/x/crypto/bcrypt"

	"chatroom-backend/internal/config"
	"chatroom-backend/internal/database"
	"chatroom-backend/internal/handlers"
	"chatroom-backend/internal/middleware"
	"chatroom-backend/internal/repository"
	"chatroom-backend/internal/router"
	"chatroom-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Chat API...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Account Store ────
	var accounts middleware.AccountLookup
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		accountRepo := repository.NewAccountRepo(pool)
		if err := accountRepo.SeedAccounts(context.Background(), cfg.Accounts, bcrypt.DefaultCost); err != nil {
			log.Fatalf("✗ Account seeding failed: %v", err)
		}
		accounts = accountRepo
		log.Printf("✓ Accounts served from PostgreSQL (%d seeded)", len(cfg.Accounts))
	} else {
		staticRepo, err := repository.NewStaticAccountRepo(cfg.Accounts, bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("✗ Account table initialization failed: %v", err)
		}
		accounts = staticRepo
		log.Printf("✓ Static account table loaded (%d accounts)", staticRepo.Len())
	}

	// ──── Step 3: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Printf("✓ Gemini client initialized (model %s)", cfg.GeminiModel)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute, accounts)
	conversations := repository.NewConversationRepo(cfg.HistoryMaxTurns)
	gateway := services.NewCompletionGateway(
		geminiService,
		time.Duration(cfg.GeminiTimeoutSeconds)*time.Second,
		cfg.GeminiForwardHistory,
	)
	authService := services.NewAuthService(accounts, jwtAuth)
	chatService := services.NewChatService(conversations, gateway, cfg.SystemPrompt)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(jwtAuth, authHandler, chatHandler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.GeminiTimeoutSeconds+15) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Chat API ready on http://localhost:%s", cfg.Port)
	log.Printf("  CORS origins: %v", cfg.AllowedOrigins)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
