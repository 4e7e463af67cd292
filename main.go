package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"arenda/internal/app"
	"arenda/internal/config"
	"arenda/internal/database"
	"arenda/internal/services"
	"arenda/internal/uploads"
	"arenda/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL is not set, listing events are disabled")
	}

	fiberApp, err := setupApp(cfg, publisher)
	if err != nil {
		log.Fatalf("Failed to set up application: %v", err)
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := fiberApp.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := fiberApp.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// setupApp opens the database and upload directory and builds the Fiber app.
func setupApp(cfg config.Config, publisher services.EventPublisher) (*fiber.App, error) {
	db, err := database.Setup(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	store, err := uploads.NewOSStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	fiberApp, err := app.New(cfg, db, store, publisher)
	if err != nil {
		return nil, fmt.Errorf("failed to build app: %w", err)
	}
	return fiberApp, nil
}
