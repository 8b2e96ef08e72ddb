package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/inventory"
	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	txr         repository.Transactor
	productRepo repository.ProductRepository
	recorder    StockRecorder
	stores      StoreInvalidator
	images      ImageInvalidator
	now         func() time.Time
	logger      zerolog.Logger
}

// NewProductService creates a new product service. stores and images may be nil.
func NewProductService(
	txr repository.Transactor,
	productRepo repository.ProductRepository,
	recorder StockRecorder,
	stores StoreInvalidator,
	images ImageInvalidator,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		txr:         txr,
		productRepo: productRepo,
		recorder:    recorder,
		stores:      storesOrNop(stores),
		images:      imagesOrNop(images),
		now:         time.Now,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves active or archived products.
func (s *productService) GetAll(ctx context.Context, archived bool) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx, archived)
	if err != nil {
		s.logger.Error().Err(err).Bool("archived", archived).Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Bool("archived", archived).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if id == uuid.Nil {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrNotFound
	}

	return product, nil
}

// Create stores a product with its sizes and logs initial_stock for each
// size that starts with a non-zero quantity.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "product request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		TeamID:    req.TeamID,
		KitTypeID: req.KitTypeID,
		Season:    strings.TrimSpace(req.Season),
		Price:     req.Price,
		Sizes:     make([]model.ProductSize, len(req.Sizes)),
		CreatedAt: s.now().UTC(),
	}
	deltas := newStockDeltas()
	for i, size := range req.Sizes {
		product.Sizes[i] = model.ProductSize{Size: strings.TrimSpace(size.Size), Quantity: size.Quantity}
		deltas.add(productRef(product.ID, product.Sizes[i].Size), size.Quantity)
	}

	var logs []*model.InventoryLog
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		if err := s.productRepo.Create(ctx, tx, product); err != nil {
			return err
		}
		var err error
		logs, err = deltas.apply(ctx, tx, s.recorder, model.ChangeInitialStock, "", nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Published(ctx, logs)
	s.stores.Invalidate(catalog.Products)

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Int("sizes", len(product.Sizes)).
		Msg("product created successfully")

	return product, nil
}

// AdjustStock applies a signed manual correction to one size.
func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "stock adjustment is required")
	}
	return s.adjust(ctx, id, model.ChangeManualAdjustment, req)
}

// Restock adds delivered units to one size.
func (s *productService) Restock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "stock adjustment is required")
	}
	if req.QuantityChange <= 0 {
		return nil, model.NewValidationError("quantityChange", "restock quantity must be greater than zero")
	}
	return s.adjust(ctx, id, model.ChangeRestock, req)
}

func (s *productService) adjust(ctx context.Context, id uuid.UUID, changeType model.ChangeType, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	log, err := applyOne(ctx, s.txr, s.recorder, s.logger, inventory.Adjustment{
		Ref:        productRef(id, strings.TrimSpace(req.Size)),
		ChangeType: changeType,
		Change:     req.QuantityChange,
		Reason:     req.Reason,
	})
	if err != nil {
		return nil, err
	}

	s.stores.Invalidate(catalog.Products)
	return log, nil
}

func (s *productService) Archive(ctx context.Context, id uuid.UUID) error {
	now := s.now().UTC()
	if err := s.productRepo.SetArchived(ctx, id, &now); err != nil {
		return err
	}
	s.stores.Invalidate(catalog.Products)
	s.logger.Info().Str("product_id", id.String()).Msg("product archived")
	return nil
}

func (s *productService) Restore(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.SetArchived(ctx, id, nil); err != nil {
		return err
	}
	s.stores.Invalidate(catalog.Products)
	s.logger.Info().Str("product_id", id.String()).Msg("product restored")
	return nil
}

// Delete permanently removes an archived product. Products still
// referenced by sales or orders fail with ErrForeignKey.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.images.Invalidate(ctx, model.EntityProduct, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("failed to invalidate cached images")
	}
	s.stores.Invalidate(catalog.Products)

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// applyOne runs a single stock adjustment in its own transaction and
// reports it once committed.
func applyOne(ctx context.Context, txr repository.Transactor, recorder StockRecorder, logger zerolog.Logger, adj inventory.Adjustment) (*model.InventoryLog, error) {
	var log *model.InventoryLog
	err := inTx(ctx, txr, logger, func(tx pgx.Tx) error {
		var err error
		log, err = recorder.Apply(ctx, tx, adj)
		return err
	})
	if err != nil {
		logger.Debug().Err(err).Str("stock_ref", adj.Ref.String()).Msg("stock adjustment failed")
		return nil, err
	}

	recorder.Published(ctx, []*model.InventoryLog{log})
	return log, nil
}
