package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sqlpilot-ai/vecmem/internal/api"
	"github.com/sqlpilot-ai/vecmem/internal/api/handlers"
	"github.com/sqlpilot-ai/vecmem/internal/api/middleware"
)

type RouterConfig struct {
	SearchHandler *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/search", cfg.SearchHandler.Search)
	r.Post("/search/both", cfg.SearchHandler.SearchBoth)

	return r
}
