package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/tinykv/internal/infra/buildinfo"
)

// Sizer reports the number of stored keys.
type Sizer interface {
	Len() int
}

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics serves GET /metrics. Nil disables the endpoint.
	Metrics http.Handler

	// Store is reported by /health. Optional.
	Store Sizer

	// Logger for request logging.
	Logger *slog.Logger

	// Now overrides the clock used in /health (tests).
	Now func() time.Time
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Keys    *int   `json:"keys,omitempty"`
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	build := buildinfo.Get()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "healthy",
			Time:    now().UTC().Format(time.RFC3339),
			Version: build.Version,
			Commit:  build.Commit,
		}
		if cfg.Store != nil {
			n := cfg.Store.Len()
			resp.Keys = &n
		}
		writeJSON(w, http.StatusOK, resp)
	})

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// AccessLog sits outside Recover so a recovered panic is logged as a 500.
	return Chain(mux, RequestID(), AccessLog(logger), Recover(logger))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
