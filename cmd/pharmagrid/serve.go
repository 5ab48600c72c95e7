package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dhruvp18/pharma-grid-landing/internal/config"
	"github.com/Dhruvp18/pharma-grid-landing/internal/db"
	"github.com/Dhruvp18/pharma-grid-landing/internal/jobs"
	"github.com/Dhruvp18/pharma-grid-landing/internal/limiter"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm/claude"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm/gemini"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm/ollama"
	"github.com/Dhruvp18/pharma-grid-landing/internal/metrics"
	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore"
	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore/local"
	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore/supabase"
	"github.com/Dhruvp18/pharma-grid-landing/internal/service"
	"github.com/Dhruvp18/pharma-grid-landing/internal/store"
	"github.com/Dhruvp18/pharma-grid-landing/internal/web"
)

const (
	jobTimeout     = time.Minute
	limiterWindow  = time.Minute
	limiterPruning = "@every 10m"
)

func runServe(ctx context.Context, envFile string) error {
	cfg, logger, cleanup, err := setup(envFile)
	if err != nil {
		return err
	}
	defer cleanup()

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	model, err := newModel(cfg, logger)
	if err != nil {
		return err
	}
	photos, err := newPhotoStore(cfg, logger)
	if err != nil {
		return err
	}
	lim, err := newLimiters(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer lim.release()

	m := metrics.New()
	items := store.NewItemStore(database)
	profiles := store.NewProfileStore(database)
	bookings := store.NewBookingStore(database)
	reviews := store.NewReviewStore(database)

	handover := service.NewHandoverService(bookings, lim.scan, cfg.HandoverCodeTTL, m, logger)
	svcs := web.Services{
		Inspection: service.NewInspectionService(model, m, logger),
		Handover:   handover,
		Listings:   service.NewListingService(items, profiles, photos, cfg.PlaceholderURL, m, logger),
		Bookings:   service.NewBookingService(bookings, items, logger),
		Reviews:    service.NewReviewService(reviews, items, bookings, profiles, logger),
		Chat:       service.NewChatService(model, cfg.ChatWebSearch, m, logger),
	}

	sched := jobs.NewScheduler(logger, jobTimeout)
	if err := sched.Add("sweep-expired-handover-codes", cfg.HandoverSweep, func(ctx context.Context) error {
		_, err := handover.SweepExpired(ctx)
		return err
	}); err != nil {
		return err
	}
	if len(lim.memory) > 0 {
		if err := sched.Add("prune-rate-limiters", limiterPruning, func(context.Context) error {
			for _, mem := range lim.memory {
				mem.Prune()
			}
			return nil
		}); err != nil {
			return err
		}
	}
	sched.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		sched.Stop(stopCtx)
	}()

	server := web.NewServer(svcs, photos, web.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxVideoBytes:  cfg.MaxVideoBytes,
		CORSOrigins:    cfg.CORSOrigins,
		AILimiter:      lim.ai,
		Metrics:        m,
		Health:         database.PingContext,
	}, logger)

	if err := server.Run(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func newModel(cfg *config.Config, logger *slog.Logger) (llm.Model, error) {
	switch cfg.ModelBackend {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required when MODEL_BACKEND=gemini")
		}
		logger.Info("using Gemini model backend", "model", cfg.GeminiModel)
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, errors.New("CLAUDE_API_KEY is required when MODEL_BACKEND=claude")
		}
		logger.Info("using Claude model backend", "model", cfg.ClaudeModel)
		return claude.New(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	case "ollama":
		logger.Info("using Ollama model backend", "host", cfg.OllamaHost, "model", cfg.OllamaModel)
		return ollama.New(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown MODEL_BACKEND %q (want gemini, claude or ollama)", cfg.ModelBackend)
	}
}

func newPhotoStore(cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required when PHOTO_BACKEND=supabase")
		}
		if cfg.UsingAnonKey() {
			logger.Warn("storage is using the anon key; uploads may be rejected by row-level security")
		}
		logger.Info("using Supabase photo store", "bucket", cfg.SupabaseBucket)
		return supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket), nil
	case "local":
		logger.Info("using local photo store", "path", cfg.PhotoPath)
		ps, err := local.New(cfg.PhotoPath, cfg.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize photo store: %w", err)
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unknown PHOTO_BACKEND %q (want local or supabase)", cfg.PhotoBackend)
	}
}

type limiters struct {
	scan    limiter.Limiter
	ai      limiter.Limiter
	memory  []*limiter.Memory
	release func()
}

// newLimiters shares counters through Redis when REDIS_ADDR is set so every
// replica sees the same budget; otherwise each process keeps its own.
func newLimiters(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*limiters, error) {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("using redis rate limiters", "addr", cfg.RedisAddr)

		l := &limiters{
			scan:    limiter.NewRedis(rdb, cfg.ScanAttempts, limiterWindow, "pharmagrid:scan"),
			release: func() {
				if err := rdb.Close(); err != nil {
					logger.Error("failed to close redis client", "error", err)
				}
			},
		}
		if cfg.AIRequestsPerMin > 0 {
			l.ai = limiter.NewRedis(rdb, cfg.AIRequestsPerMin, limiterWindow, "pharmagrid:ai")
		}
		return l, nil
	}

	scan := limiter.NewMemory(cfg.ScanAttempts, limiterWindow)
	l := &limiters{scan: scan, memory: []*limiter.Memory{scan}, release: func() {}}
	if cfg.AIRequestsPerMin > 0 {
		ai := limiter.NewMemory(cfg.AIRequestsPerMin, limiterWindow)
		l.ai = ai
		l.memory = append(l.memory, ai)
	}
	return l, nil
}
