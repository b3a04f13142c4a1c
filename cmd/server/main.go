package main

import (
	"net/http"
	"os"

	"github.com/rfenwick/relayd/internal/api"
	"github.com/rfenwick/relayd/internal/chat"
	"github.com/rfenwick/relayd/internal/llm"
	"github.com/rfenwick/relayd/internal/repo"
	"github.com/rfenwick/relayd/internal/store"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	addr := envOr("RELAYD_ADDR", ":8100")
	storePath := envOr("RELAYD_STORE", "conversations.json")
	backend := envOr("RELAYD_STORE_BACKEND", "file")

	var st store.Store
	switch backend {
	case "sqlite":
		sqliteStore, err := store.NewSQLiteStore(storePath)
		if err != nil {
			logger.Fatal("failed to initialize sqlite store",
				zap.Error(err),
				zap.String("path", storePath))
		}
		defer sqliteStore.Close()
		st = sqliteStore
	case "file":
		st = store.NewFileStore(storePath, logger)
	default:
		logger.Fatal("unknown store backend", zap.String("backend", backend))
	}

	repository := repo.New(st, logger)

	token := os.Getenv("OPENAI_API_KEY")
	if token == "" {
		logger.Warn("OPENAI_API_KEY not set; message turns will fail until configured")
	}
	client, err := llm.New(
		envOr("OPENAI_BASE_URL", "http://localhost:11434/v1/"),
		token,
		envOr("OPENAI_MODEL", "llama3.1:8b"),
	)
	if err != nil {
		logger.Fatal("failed to initialize completion client", zap.Error(err))
	}

	exchange := chat.NewExchange(repository, client, logger)
	handler := api.NewHandler(repository, exchange, logger)

	mux := http.NewServeMux()
	handler.Routes(mux)

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir("web")))

	logger.Info("Starting server", zap.String("addr", addr), zap.String("store", storePath))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
