package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	glog "github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/playground/internal/adapter/llm"
	"github.com/xiaot623/gogo/playground/internal/config"
	"github.com/xiaot623/gogo/playground/internal/hub"
	"github.com/xiaot623/gogo/playground/internal/repository"
	"github.com/xiaot623/gogo/playground/internal/service"
	handler "github.com/xiaot623/gogo/playground/internal/transport/http"
	"github.com/xiaot623/gogo/playground/internal/transport/ws"
	"github.com/xiaot623/gogo/playground/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting playground...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Upstream URL: %s", cfg.UpstreamURL)
	if cfg.Mode != "" {
		log.Printf("Mode: %s", cfg.Mode)
	}

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize hub
	h := hub.NewHub()
	go h.Run()

	// Initialize LLM client
	llmClient := llm.NewLLMClient(cfg.Mode, cfg.UpstreamURL, cfg.UpstreamAPIKey, cfg.UpstreamUserID, cfg.LLMTimeout)

	// Initialize policy engine
	ctx := context.Background()
	var policyEngine *policy.Engine
	if cfg.PolicyFile != "" {
		policyEngine, err = policy.NewEngineFromFile(ctx, cfg.PolicyFile)
	} else {
		policyEngine, err = policy.NewEngine(ctx, policy.DefaultPolicy)
	}
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(db, llmClient, h, policyEngine, cfg)

	// Create Echo server
	wsServer := ws.NewServer(cfg, h, svc)
	server := handler.NewServer(svc, wsServer)
	server.Logger.SetLevel(logLevel(cfg.LogLevel))

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Playground API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down playground...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Playground stopped")
}

func logLevel(level string) glog.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	}
	return glog.INFO
}
