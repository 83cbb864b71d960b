package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/crownjudge/pageant/go/internal/realtime"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	config := defaultConfig()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := loadConfig(path)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		config = loaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := setupDatabase(ctx)
	if err != nil {
		log.Fatalf("Failed to setup database: %v", err)
	}
	defer pool.Close()

	natsURL := getEnv("NATS_URL", "nats://localhost:4222")

	jsConfig := realtime.DefaultJetStreamConfig()
	jsConfig.URL = natsURL
	jsConfig.StreamName = config.Realtime.StreamName
	jsConfig.SubjectPrefix = config.Realtime.SubjectPrefix
	jsConfig.MaxAge = config.maxAge()

	publisher, err := realtime.NewPublisher(jsConfig)
	if err != nil {
		log.Fatalf("Failed to setup JetStream publisher: %v", err)
	}
	defer publisher.Close()

	hub := realtime.NewHub(realtime.DefaultConnectionConfig())
	go hub.Start(ctx)

	consumerConfig := realtime.DefaultConsumerConfig()
	consumerConfig.URL = natsURL
	consumerConfig.StreamName = config.Realtime.StreamName
	consumerConfig.ConsumerName = config.Realtime.ConsumerName
	consumerConfig.SubjectFilter = config.Realtime.SubjectPrefix + ".>"

	consumer, err := realtime.NewConsumer(hub, consumerConfig)
	if err != nil {
		log.Fatalf("Failed to setup JetStream consumer: %v", err)
	}
	defer consumer.Stop()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Printf("Notification consumer failed: %v", err)
		}
	}()

	services := setupServices(pool, publisher, hub)
	server := setupServer(services)

	go func() {
		log.Printf("Pageant API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received shutdown signal: %v", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown failed: %v", err)
	}
	cancel()

	log.Printf("Shutdown complete")
}
