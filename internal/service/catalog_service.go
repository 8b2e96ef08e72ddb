package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService for one reference table.
type catalogService struct {
	repo   repository.CatalogRepository
	stores StoreInvalidator
	store  string
	now    func() time.Time
	logger zerolog.Logger
}

// NewCatalogService creates a service for the table served by repo. stores may be nil.
func NewCatalogService(repo repository.CatalogRepository, stores StoreInvalidator, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		stores: storesOrNop(stores),
		store:  catalog.StoreFor(string(repo.Kind())),
		now:    time.Now,
		logger: logger.With().Str("service", string(repo.Kind())).Logger(),
	}
}

func (s *catalogService) Kind() model.CatalogKind {
	return s.repo.Kind()
}

func (s *catalogService) List(ctx context.Context, archived bool) ([]model.CatalogEntity, error) {
	entities, err := s.repo.List(ctx, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.repo.Kind(), err)
	}
	return entities, nil
}

func (s *catalogService) Create(ctx context.Context, req *model.CatalogRequest) (*model.CatalogEntity, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entity := &model.CatalogEntity{
		ID:        uuid.New(),
		Kind:      s.repo.Kind(),
		Name:      strings.TrimSpace(req.Name),
		URL:       strings.TrimSpace(req.URL),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.stores.Invalidate(s.store)
	return entity, nil
}

func (s *catalogService) Archive(ctx context.Context, id uuid.UUID) error {
	now := s.now().UTC()
	if err := s.repo.SetArchived(ctx, id, &now); err != nil {
		return err
	}
	s.stores.Invalidate(s.store)
	return nil
}

func (s *catalogService) Restore(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetArchived(ctx, id, nil); err != nil {
		return err
	}
	s.stores.Invalidate(s.store)
	return nil
}

// Delete permanently removes an archived entry. Entries still used by
// products or stock items fail with ErrForeignKey.
func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Debug().Err(err).Str("id", id.String()).Msg("delete refused")
		return err
	}
	s.stores.Invalidate(s.store)
	return nil
}
