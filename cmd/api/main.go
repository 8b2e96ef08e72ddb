package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/config"
	"calcio-stop/internal/database"
	"calcio-stop/internal/handler"
	"calcio-stop/internal/imagecache"
	"calcio-stop/internal/inventory"
	"calcio-stop/internal/messaging"
	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"
	"calcio-stop/internal/routeload"
	"calcio-stop/internal/router"
	"calcio-stop/internal/service"
	"calcio-stop/internal/storage"
	"calcio-stop/internal/telemetry"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger, "api")
	logger.Info().Msg("starting calcio-stop API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer shutdownWith(logger, "meter provider", shutdownMeter)

	if cfg.Telemetry.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TracingEndpoint)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer shutdownWith(logger, "tracer provider", shutdownTracer)
	}

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	txr := repository.NewTransactor(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	saleRepo := repository.NewSaleRepository(pool, logger)
	returnRepo := repository.NewReturnRepository(pool, logger)
	reservationRepo := repository.NewReservationRepository(pool, logger)
	imageRepo := repository.NewImageRepository(pool, logger)
	logRepo := repository.NewInventoryLogRepository(pool, logger)

	namesetRepo, err := repository.NewStockItemRepository(pool, model.EntityNameset, logger)
	if err != nil {
		return err
	}
	badgeRepo, err := repository.NewStockItemRepository(pool, model.EntityBadge, logger)
	if err != nil {
		return err
	}

	catalogRepos := make(map[model.CatalogKind]repository.CatalogRepository)
	for _, kind := range []model.CatalogKind{model.CatalogTeams, model.CatalogKitTypes, model.CatalogLeagues, model.CatalogSellers} {
		repo, err := repository.NewCatalogRepository(pool, kind, logger)
		if err != nil {
			return err
		}
		catalogRepos[kind] = repo
	}

	// Inventory events are optional; without brokers the recorder only logs.
	var publisher inventory.Publisher
	if len(cfg.Events.Brokers) > 0 {
		producer := messaging.NewProducer(cfg.Events.Brokers, cfg.Events.Topic)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close kafka producer")
			}
		}()
		publisher = producer
		logger.Info().Strs("brokers", cfg.Events.Brokers).Str("topic", cfg.Events.Topic).Msg("publishing inventory events")
	} else {
		logger.Info().Msg("inventory events disabled (no KAFKA_BROKERS)")
	}
	recorder := inventory.NewRecorder(repository.NewStockRepository(logger), logRepo, publisher, logger)

	imageCache, rdb, err := newImageCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	resolver := imagecache.NewResolver(imageRepo, imageCache, logger)

	var objects service.ObjectStore
	if cfg.Storage.Enabled {
		bucket, err := storage.NewS3Bucket(ctx, cfg.Storage, cfg.Backend, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		objects = bucket
	} else {
		logger.Info().Msg("image storage disabled, uploads will be refused")
	}

	// Stores are filled from the repositories; services invalidate them
	// through the loader after every committed mutation.
	registry := catalog.NewRegistry(catalog.Sources{
		Products: productRepo.List,
		Namesets: namesetRepo.List,
		Badges:   badgeRepo.List,
		Teams:    catalogRepos[model.CatalogTeams].List,
		KitTypes: catalogRepos[model.CatalogKitTypes].List,
		Leagues:  catalogRepos[model.CatalogLeagues].List,
		Sellers:  catalogRepos[model.CatalogSellers].List,
		Orders:   orderRepo.List,
		Sales:    saleRepo.List,
	}, logger)

	routes, err := routeload.DefaultTable()
	if err != nil {
		return fmt.Errorf("failed to parse route table: %w", err)
	}
	loader, err := routeload.NewLoader(routes, routeload.NewGuard(), registry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize route loader: %w", err)
	}

	// Initialize services
	productService := service.NewProductService(txr, productRepo, recorder, loader, resolver, logger)
	namesetService := service.NewStockItemService(txr, namesetRepo, recorder, loader, resolver, logger)
	badgeService := service.NewStockItemService(txr, badgeRepo, recorder, loader, resolver, logger)
	orderService := service.NewOrderService(txr, orderRepo, saleRepo, recorder, loader, logger)
	saleService := service.NewSaleService(txr, saleRepo, orderRepo, recorder, loader, logger)
	returnService := service.NewReturnService(txr, returnRepo, recorder, loader, logger)
	reservationService := service.NewReservationService(txr, reservationRepo, recorder, loader, logger)
	inventoryService := service.NewInventoryService(logRepo, logger)
	imageService := service.NewImageService(objects, imageRepo, resolver, logger)

	catalogHandler := func(kind model.CatalogKind) *handler.CatalogHandler {
		return handler.NewCatalogHandler(service.NewCatalogService(catalogRepos[kind], loader, logger), loader, logger)
	}

	// Initialize router
	mux := router.New(router.Handlers{
		Products:      handler.NewProductHandler(productService, loader, logger),
		Namesets:      handler.NewStockItemHandler(namesetService, loader, logger),
		Badges:        handler.NewStockItemHandler(badgeService, loader, logger),
		Teams:         catalogHandler(model.CatalogTeams),
		KitTypes:      catalogHandler(model.CatalogKitTypes),
		Leagues:       catalogHandler(model.CatalogLeagues),
		Sellers:       catalogHandler(model.CatalogSellers),
		Orders:        handler.NewOrderHandler(orderService, loader, logger),
		Sales:         handler.NewSaleHandler(saleService, returnService, reservationService, loader, logger),
		Inventory:     handler.NewInventoryHandler(inventoryService, loader, logger),
		ProductImages: handler.NewImageHandler(imageService, model.EntityProduct, logger),
		NamesetImages: handler.NewImageHandler(imageService, model.EntityNameset, logger),
		BadgeImages:   handler.NewImageHandler(imageService, model.EntityBadge, logger),
		Metrics:       metricsHandler,
	}, cfg.Backend.AnonKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newImageCache picks Redis when REDIS_URL is set and the in-process cache
// otherwise. The returned client is nil for the in-process cache.
func newImageCache(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (imagecache.Cache, *redis.Client, error) {
	if cfg.RedisURL == "" {
		logger.Info().Dur("ttl", cfg.TTL).Msg("using in-process image cache")
		return imagecache.NewMemoryCache(cfg.TTL), nil, nil
	}

	rdb, err := imagecache.Dial(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize image cache: %w", err)
	}
	logger.Info().Dur("ttl", cfg.TTL).Msg("using redis image cache")
	return imagecache.NewRedisCache(rdb, cfg.TTL), rdb, nil
}

func shutdownWith(logger zerolog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error().Err(err).Str("provider", name).Msg("failed to shut down")
	}
}
