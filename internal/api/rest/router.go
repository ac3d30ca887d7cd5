package rest

import (
	"net/http"
	"strings"

	"memo-service/internal/api/http/middleware"
	"memo-service/internal/config"

	"github.com/rs/cors"
)

// NewRouter регистрирует маршруты API на новом http.ServeMux
func NewRouter(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/memos", h.ListMemos)
	mux.HandleFunc("POST /api/v1/memos", h.CreateMemo)
	mux.HandleFunc("DELETE /api/v1/memos", h.ClearMemos)
	mux.HandleFunc("GET /api/v1/memos/stats", h.GetStats)
	mux.HandleFunc("POST /api/v1/memos/refresh", h.RefreshMemos)
	mux.HandleFunc("GET /api/v1/memos/{id}", h.GetMemo)
	mux.HandleFunc("PUT /api/v1/memos/{id}", h.UpdateMemo)
	mux.HandleFunc("DELETE /api/v1/memos/{id}", h.DeleteMemo)

	return mux
}

// Setup оборачивает роутер цепочкой middleware.
// Порядок применения (изнутри наружу):
// 1. Rate Limiting (ограничивает количество запросов)
// 2. Logging (логирует все запросы)
// 3. CORS (обработка CORS заголовков - самый внешний слой)
func Setup(mux *http.ServeMux, cfg *config.ConfigHTTP) http.Handler {
	var handler http.Handler = mux
	handler = middleware.RateLimit(handler, cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler = middleware.Logging(handler)
	handler = setupCORS(cfg).Handler(handler)

	return handler
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigHTTP) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400 // 24 часа по умолчанию
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-Requested-With",
		},
		MaxAge: maxAge,
	})
}
