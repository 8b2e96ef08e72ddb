package service

import (
	"context"
	"fmt"

	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// inventoryService implements InventoryService.
type inventoryService struct {
	logRepo repository.InventoryLogRepository
	logger  zerolog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(logRepo repository.InventoryLogRepository, logger zerolog.Logger) InventoryService {
	return &inventoryService{
		logRepo: logRepo,
		logger:  logger.With().Str("service", "inventory").Logger(),
	}
}

// History returns up to limit entries; limit is clamped to [1, 500] with a default of 50.
func (s *inventoryService) History(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, limit int) ([]model.InventoryLog, error) {
	if _, err := model.ParseEntityType(string(entityType)); err != nil {
		return nil, err
	}
	if entityID == uuid.Nil {
		return nil, model.NewValidationError("entityId", "entity id is required")
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	logs, err := s.logRepo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to get inventory history")
		return nil, fmt.Errorf("failed to get inventory history: %w", err)
	}

	return logs, nil
}
