package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yourusername/gatechain/api"
	"github.com/yourusername/gatechain/metrics"
	"github.com/yourusername/gatechain/pkg/gatechain"
)

func main() {
	// Configuration
	port := getEnv("PORT", "8080")
	configFile := getEnv("CONFIG_FILE", "")
	redisAddr := getEnv("REDIS_ADDR", "")

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := []gatechain.Option{
		gatechain.WithLogger(logger),
	}
	if configFile != "" {
		opts = append(opts, gatechain.WithConfigFile(configFile))
	}

	// Choose a window store. Redis shares rate limit state across
	// instances; the in-memory default is for a single instance.
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		store := gatechain.NewRedisWindowStore(client)

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := store.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.String("addr", redisAddr), zap.Error(err))
		}
		defer store.Close()

		logger.Info("using Redis window store", zap.String("addr", redisAddr))
		opts = append(opts, gatechain.WithStore(store))
	} else {
		logger.Info("using in-memory window store")
	}

	tracker := metrics.NewMetrics()
	opts = append(opts, gatechain.WithMetrics(tracker))

	chain, err := gatechain.New(opts...)
	if err != nil {
		logger.Fatal("failed to build pipeline", zap.Error(err))
	}
	defer chain.Close()

	stopCleanup := chain.StartBackgroundCleanup()
	defer stopCleanup()

	// Messaging endpoints behind the pipeline; metrics and health outside it.
	handler := api.NewHandler()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", handler.Messages)
	mux.HandleFunc("/api/conversations/", handler.Messages)

	auth := api.NewAuthenticator()
	protected := auth.Middleware(chain.Middleware(mux))

	root := http.NewServeMux()
	root.Handle("/api/", protected)
	root.Handle("/metrics", api.NewMetricsHandler(tracker))
	root.HandleFunc("/health", healthHandler)

	addr := ":" + port
	logger.Info("gatechain messaging gateway listening",
		zap.String("addr", addr),
		zap.String("config", configFile))

	fmt.Println("Endpoints:")
	fmt.Println("  GET  /api/messages                        - List messages")
	fmt.Println("  POST /api/messages                        - Send a message (rate limited)")
	fmt.Println("  POST /api/conversations/{id}/messages     - Send into a conversation")
	fmt.Println("  GET  /metrics                             - Gate decision counters")
	fmt.Println("  GET  /health                              - Health check")

	if err := http.ListenAndServe(addr, root); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy","service":"gatechain"}`))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
