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

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lokey/fortuna-core/pkg/api"
	"github.com/lokey/fortuna-core/pkg/database"
	"github.com/lokey/fortuna-core/pkg/fortuna"
	"github.com/lokey/fortuna-core/pkg/primitives"
)

const (
	DefaultPort       = 8090
	DefaultDbPath     = "/data/fortuna-audit.db"
	DefaultShutdownMs = 10 * time.Second
)

func main() {
	port := DefaultPort
	if val, ok := os.LookupEnv("PORT"); ok {
		if n, err := fmt.Sscanf(val, "%d", &port); n != 1 || err != nil {
			log.Printf("Invalid PORT, using default: %d", DefaultPort)
			port = DefaultPort
		}
	}

	dbPath := DefaultDbPath
	if val, ok := os.LookupEnv("DB_PATH"); ok && val != "" {
		dbPath = val
	}

	audit, err := database.NewAuditLog(dbPath)
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}

	accumulator := fortuna.New(primitives.NewAES256PRF, primitives.NewSHA256d, primitives.NewMonotonicTimer())

	server := api.NewServer(accumulator, audit, port, prometheus.NewRegistry())

	log.Printf("Starting Fortuna service with configuration:")
	log.Printf("  Port: %d", port)
	log.Printf("  Audit DB Path: %s", dbPath)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.Router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Listening on port %d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalf("server error: %v", err)
	case sig := <-sigCh:
		log.Printf("Received signal %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownMs)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if err := audit.Close(); err != nil {
		log.Printf("Error closing audit log: %v", err)
	}

	log.Println("Fortuna service gracefully shut down")
}
