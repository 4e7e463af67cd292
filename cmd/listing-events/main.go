// Command listing-events consumes listing lifecycle events and logs them.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"arenda/internal/config"
	"arenda/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL must be set")
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	done, err := mqClient.ConsumeListingEvents(logEvent)
	if err != nil {
		log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("Shutting down consumer...")
	case <-done:
		log.Println("Delivery channel closed by the broker")
	}
}

func logEvent(event rabbitmq.ListingEvent) error {
	switch event.Event {
	case "listing.created":
		log.Printf("Listing %d created by user %d in category %d at %d per night",
			event.ListingID, event.UserID, event.CategoryID, event.Price)
	case "listing.deactivated":
		log.Printf("Listing %d deactivated by user %d", event.ListingID, event.UserID)
	default:
		log.Printf("Ignoring unknown event %q for listing %d", event.Event, event.ListingID)
	}
	return nil
}
