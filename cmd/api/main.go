package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"neighborly/internal/api"
	"neighborly/internal/booking"
	"neighborly/internal/catalog"
	"neighborly/internal/config"
	"neighborly/internal/database"
	"neighborly/internal/domain"
	"neighborly/internal/events"
	"neighborly/internal/ingest"
	"neighborly/internal/logging"
	"neighborly/internal/metrics"
	"neighborly/internal/models"
	"neighborly/internal/repository"
	"neighborly/internal/storage"
	"neighborly/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	index := catalog.NewIndex(db, &logger)
	if err := index.Reload(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	states := initStateRepository(redisClient, &logger)

	objectStorage, err := initStorage(ctx, cfg, &logger)
	if err != nil {
		return err
	}

	reaper := initReaper(ctx, objectStorage, redisClient, &logger)

	eventBus := events.NewEventBus()
	subscribeEvents(eventBus, &logger)

	media := api.NewStagedMedia()
	ingestLogger := logging.Component(&logger, "ingest")
	ingestor := ingest.NewIngestor(media, objectStorage, db, reaper, eventBus, cfg.Ingest.UploadFolder, &ingestLogger)

	bookings := &bookingService{
		bus:     eventBus,
		timeout: time.Duration(cfg.Booking.ConfirmTimeoutSeconds) * time.Second,
		logger:  logging.Component(&logger, "booking"),
	}

	apiLogger := logging.Component(&logger, "http")
	httpServer := api.NewHTTPServer(cfg.API, index, ingestor, media, bookings, states, cfg.Ingest.MaxImageBytes, &apiLogger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	ctx := context.Background()
	for _, category := range cfg.Categories {
		if err := db.CreateCategory(ctx, models.Category{Type: category}); err != nil {
			logger.Warn().Err(err).Str("category", category).Msg("seed category")
		}
	}
	if err := db.SeedListings(ctx, cfg.Listings); err != nil {
		logger.Error().Err(err).Msg("seed listings")
		return nil, err
	}
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initStateRepository(redisClient *redis.Client, logger *zerolog.Logger) domain.StateRepository {
	ttl := time.Duration(models.DefaultSessionTTL) * time.Second
	fallback := repository.NewMemoryStateRepository(ttl)
	if redisClient == nil {
		return fallback
	}

	stateLogger := logging.Component(logger, "state")
	primary := repository.NewRedisStateRepository(redisClient, ttl)
	return repository.NewFailoverStateRepository(primary, fallback, &stateLogger)
}

func initStorage(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.ObjectStorage, error) {
	if cfg.Storage.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required for the API application")
	}

	storageLogger := logging.Component(logger, "storage")
	minioStorage, err := storage.NewMinioStorage(cfg.Storage, &storageLogger)
	if err != nil {
		return nil, err
	}
	if err := minioStorage.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("bucket check failed, uploads may fail")
	}
	return minioStorage, nil
}

func initReaper(ctx context.Context, objectStorage domain.ObjectStorage, redisClient *redis.Client, logger *zerolog.Logger) *worker.Reaper {
	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	reaperLogger := logging.Component(logger, "reaper")
	reaper := worker.NewReaper(objectStorage, redisClient, retryPolicy, &reaperLogger)
	go reaper.Start(ctx)
	return reaper
}

func subscribeEvents(bus *events.EventBus, logger *zerolog.Logger) {
	eventLogger := logging.Component(logger, "events")
	logHandler := func(event *events.Event) error {
		eventLogger.Info().Str("type", event.Type).RawJSON("payload", event.Payload).Msg("event")
		return nil
	}
	bus.Subscribe(events.EventListingCreated, logHandler)
	bus.Subscribe(events.EventBookingRequested, logHandler)
	bus.Subscribe(events.EventBookingFulfilled, logHandler)
	bus.Subscribe(events.EventBookingDeclined, logHandler)
}

// bookingService runs one booking flow per incoming request. The HTTP
// surface has no interactive prompt, so requests for available listings
// confirm immediately and unavailable ones decline.
type bookingService struct {
	bus     *events.EventBus
	timeout time.Duration
	logger  zerolog.Logger
}

func (b *bookingService) Request(ctx context.Context, listing *models.Listing, requesterID string) (string, error) {
	flow := booking.NewFlow(availabilityConfirmer{listing: listing}, b.bus, b.timeout, &b.logger)
	return flow.Request(ctx, listing, requesterID)
}

type availabilityConfirmer struct {
	listing *models.Listing
}

func (c availabilityConfirmer) Confirm(ctx context.Context, title, message string) (bool, error) {
	return c.listing.Available, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}
