package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dhruvp18/pharma-grid-landing/internal/limiter"
	"github.com/Dhruvp18/pharma-grid-landing/internal/metrics"
	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore"
	"github.com/Dhruvp18/pharma-grid-landing/internal/service"
)

const (
	defaultMaxUpload = 50 * 1024 * 1024 // 50 MB
	// Gemini rejects inline request data above 20 MB.
	defaultMaxVideo = 20 * 1024 * 1024
	shutdownTimeout  = 20 * time.Second
)

// Services groups the application services the HTTP layer calls into.
type Services struct {
	Inspection *service.InspectionService
	Handover   *service.HandoverService
	Listings   *service.ListingService
	Bookings   *service.BookingService
	Reviews    *service.ReviewService
	Chat       *service.ChatService
}

// Options tunes the server. The zero value is usable.
type Options struct {
	MaxUploadBytes int64
	// MaxVideoBytes caps the file sent to /analyze-video.
	MaxVideoBytes int64
	CORSOrigins   []string
	// AILimiter throttles the model endpoints per client address. Nil disables it.
	AILimiter limiter.Limiter
	// Metrics enables GET /metrics and request instrumentation when set.
	Metrics *metrics.Metrics
	// Health backs GET /healthz, typically a database ping.
	Health func(context.Context) error
}

type Server struct {
	inspection *service.InspectionService
	handover   *service.HandoverService
	listings   *service.ListingService
	bookings   *service.BookingService
	reviews    *service.ReviewService
	chat       *service.ChatService
	photoStore photostore.PhotoStore

	maxUpload   int64
	maxVideo    int64
	corsOrigins []string
	aiLimiter   limiter.Limiter
	metrics     *metrics.Metrics
	health      func(context.Context) error

	mux     *http.ServeMux
	handler http.Handler
	logger  *slog.Logger
}

func NewServer(svcs Services, ps photostore.PhotoStore, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		inspection:  svcs.Inspection,
		handover:    svcs.Handover,
		listings:    svcs.Listings,
		bookings:    svcs.Bookings,
		reviews:     svcs.Reviews,
		chat:        svcs.Chat,
		photoStore:  ps,
		maxUpload:   opts.MaxUploadBytes,
		maxVideo:    opts.MaxVideoBytes,
		corsOrigins: opts.CORSOrigins,
		aiLimiter:   opts.AILimiter,
		metrics:     opts.Metrics,
		health:      opts.Health,
		mux:         http.NewServeMux(),
		logger:      logger,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUpload
	}
	if s.maxVideo <= 0 {
		s.maxVideo = defaultMaxVideo
	}
	s.registerRoutes()
	s.handler = requestLogger(logger, instrument(s.metrics, cors(s.corsOrigins, securityHeaders(s.mux))))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	s.mux.HandleFunc("GET /photos/{key...}", s.handleGetPhoto)

	s.mux.Handle("POST /audit-item", s.limitAI(s.handleAuditItem))
	s.mux.Handle("POST /analyze-video", s.limitAI(s.handleAnalyzeVideo))
	s.mux.Handle("POST /chat-ai", s.limitAI(s.handleChat))

	s.mux.HandleFunc("POST /generate-handover", s.handleGenerateHandover)
	s.mux.HandleFunc("POST /scan-handover", s.handleScanHandover)

	s.mux.HandleFunc("POST /create-listing", s.handleCreateListing)
	s.mux.HandleFunc("GET /items/{id}", s.handleGetItem)

	s.mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	s.mux.HandleFunc("GET /bookings/{id}", s.handleGetBooking)

	s.mux.HandleFunc("POST /reviews", s.handleCreateReview)
	s.mux.HandleFunc("GET /reviews/item/{id}", s.handleItemReviews)
	s.mux.HandleFunc("GET /reviews/owner/{id}", s.handleOwnerReviews)
	s.mux.HandleFunc("GET /profile/{id}", s.handleGetProfile)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
