package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"siteforge_server/config"
	"siteforge_server/internal/ai"
	"siteforge_server/internal/api"
	"siteforge_server/internal/github"
	"siteforge_server/internal/pipeline"
	"siteforge_server/internal/session"
	"siteforge_server/internal/vercel"
)

func main() {
	// Load .env before viper so file-provided values are visible as env vars.
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		} else {
			log.Println("Info: .env file not found, relying on system environment variables.")
		}
	} else {
		log.Println("Info: Loaded environment variables from .env file.")
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(".") // Load from config.yaml or env vars
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	// --- Dependency Initialization ---
	generator := ai.NewGenerator(cfg.OpenAIKey, cfg.OpenAIModelID)
	publisher := github.NewClient(cfg.GitHubToken)
	trigger := vercel.NewClient(cfg.VercelToken, cfg.VercelProjectID)
	provisioner := pipeline.New(generator, publisher, trigger, cfg.GitHubOwner)
	sessions := session.NewMemoryStore()

	apiHandler := api.NewAPIHandler(generator, provisioner, sessions, api.CredentialStatus{
		Generator: generator.Configured(),
		Publisher: publisher.Configured(),
		Trigger:   trigger.Configured(),
	})

	// --- Start API Server ---
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in Gin Debug Mode")
	}

	router := gin.New()        // Use gin.New() for more control over middleware
	router.Use(gin.Logger())   // Add structured logger middleware
	router.Use(gin.Recovery()) // Add panic recovery middleware

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	api.RegisterRoutes(router, apiHandler) // Register API endpoints

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
		// Set timeouts to prevent slow client attacks. The write timeout
		// must cover a full provisioning run: one bounded model call plus
		// the publish and deploy calls.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting API server on %s\n", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %s\n", err)
		}
		log.Println("API server has stopped listening.")
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1) // Buffered channel
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal: %s. Shutting down server...", sig)

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer serverCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server forced shutdown error: %v", err)
	} else {
		log.Println("API server gracefully stopped.")
	}

	log.Println("Application exiting.")
}
