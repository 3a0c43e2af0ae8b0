package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
)

func init() {
	// Wire format carries prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// RouterConfig holds router configuration
type RouterConfig struct {
	StockHandler   *StockHandler
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter creates a new HTTP router
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logging(LoggingConfig{SkipPaths: []string{"/health"}}))
	r.Use(Recovery)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/search", cfg.StockHandler.Search)
	r.Get("/stock", cfg.StockHandler.Stock)

	return r
}
