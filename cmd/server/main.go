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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mkurbatov/coach-assistant/internal/api"
	"mkurbatov/coach-assistant/internal/config"
	"mkurbatov/coach-assistant/internal/service"
	"mkurbatov/coach-assistant/internal/store"
	"mkurbatov/coach-assistant/internal/store/postgres"
	"mkurbatov/coach-assistant/internal/store/supabase"
)

func main() {
	log.Println("Starting Coach Assistant Server...")

	// .env is optional; viper picks the variables up afterwards.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Storage backend selection ---
	// Happens once at startup; the choice is not revisited at runtime.
	factory := store.Factory{
		NewPostgres: func(dc config.DatabaseConfig) store.Store { return postgres.New(dc) },
		NewSupabase: func(sc config.SupabaseConfig) store.Store { return supabase.New(sc) },
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := factory.Select(startupCtx, &cfg)
	startupCancel()
	if err != nil {
		log.Fatalf("FATAL: Could not connect to storage backend: %v", err)
	}
	defer func() {
		log.Println("Closing storage backend...")
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			log.Printf("ERROR: Failed to close storage backend: %v", err)
		}
	}()
	log.Println("Storage backend connected.")

	// --- Optional schema bootstrap (PostgreSQL only) ---
	if cfg.Server.InitSchema {
		if pg, ok := st.(*postgres.Store); ok {
			log.Println("Ensuring database schema...")
			initCtx, initCancel := context.WithTimeout(context.Background(), 1*time.Minute)
			if err := pg.InitSchema(initCtx); err != nil {
				initCancel()
				log.Fatalf("FATAL: Schema initialization failed: %v", err)
			}
			initCancel()
			log.Println("Schema ready.")
		} else {
			log.Println("WARN: init_schema requested but the REST gateway cannot run DDL, skipping")
		}
	}

	// --- Initialize Services ---
	log.Println("Initializing services...")
	coachService := service.NewCoachService(st)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, st, coachService, cfg.Server.WebDir)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
