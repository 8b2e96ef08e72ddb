package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/database"
	"calcio-stop/internal/handler"
	"calcio-stop/internal/imagecache"
	"calcio-stop/internal/inventory"
	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"
	"calcio-stop/internal/routeload"
	"calcio-stop/internal/router"
	"calcio-stop/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "test-anon-key"

// TestDB represents a migrated test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the embedded
// migrations and opens a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.Migrate(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// setupTestServer wires the full API over testDB with the in-process image
// cache, no event publisher and no image bucket.
func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	pool := testDB.Pool

	txr := repository.NewTransactor(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	saleRepo := repository.NewSaleRepository(pool, logger)
	logRepo := repository.NewInventoryLogRepository(pool, logger)
	imageRepo := repository.NewImageRepository(pool, logger)

	namesetRepo, err := repository.NewStockItemRepository(pool, model.EntityNameset, logger)
	require.NoError(t, err)
	badgeRepo, err := repository.NewStockItemRepository(pool, model.EntityBadge, logger)
	require.NoError(t, err)

	catalogRepos := make(map[model.CatalogKind]repository.CatalogRepository)
	for _, kind := range []model.CatalogKind{model.CatalogTeams, model.CatalogKitTypes, model.CatalogLeagues, model.CatalogSellers} {
		repo, err := repository.NewCatalogRepository(pool, kind, logger)
		require.NoError(t, err)
		catalogRepos[kind] = repo
	}

	recorder := inventory.NewRecorder(repository.NewStockRepository(logger), logRepo, nil, logger)
	resolver := imagecache.NewResolver(imageRepo, imagecache.NewMemoryCache(time.Minute), logger)

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
	require.NoError(t, err)
	loader, err := routeload.NewLoader(routes, routeload.NewGuard(), registry, logger)
	require.NoError(t, err)

	imageService := service.NewImageService(nil, imageRepo, resolver, logger)
	catalogHandler := func(kind model.CatalogKind) *handler.CatalogHandler {
		return handler.NewCatalogHandler(service.NewCatalogService(catalogRepos[kind], loader, logger), loader, logger)
	}

	return router.New(router.Handlers{
		Products: handler.NewProductHandler(
			service.NewProductService(txr, productRepo, recorder, loader, resolver, logger), loader, logger),
		Namesets: handler.NewStockItemHandler(
			service.NewStockItemService(txr, namesetRepo, recorder, loader, resolver, logger), loader, logger),
		Badges: handler.NewStockItemHandler(
			service.NewStockItemService(txr, badgeRepo, recorder, loader, resolver, logger), loader, logger),
		Teams:    catalogHandler(model.CatalogTeams),
		KitTypes: catalogHandler(model.CatalogKitTypes),
		Leagues:  catalogHandler(model.CatalogLeagues),
		Sellers:  catalogHandler(model.CatalogSellers),
		Orders: handler.NewOrderHandler(
			service.NewOrderService(txr, orderRepo, saleRepo, recorder, loader, logger), loader, logger),
		Sales: handler.NewSaleHandler(
			service.NewSaleService(txr, saleRepo, orderRepo, recorder, loader, logger),
			service.NewReturnService(txr, repository.NewReturnRepository(pool, logger), recorder, loader, logger),
			service.NewReservationService(txr, repository.NewReservationRepository(pool, logger), recorder, loader, logger),
			loader, logger),
		Inventory:     handler.NewInventoryHandler(service.NewInventoryService(logRepo, logger), loader, logger),
		ProductImages: handler.NewImageHandler(imageService, model.EntityProduct, logger),
		NamesetImages: handler.NewImageHandler(imageService, model.EntityNameset, logger),
		BadgeImages:   handler.NewImageHandler(imageService, model.EntityBadge, logger),
	}, testAPIKey, logger)
}
