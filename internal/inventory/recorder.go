// Package inventory is the single path through which stock quantities
// change. Every change updates the stored quantity and appends an immutable
// log entry inside the caller's transaction.
package inventory

import (
	"context"
	"fmt"
	"time"

	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Publisher delivers committed log entries to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Adjustment is a stock movement whose starting quantity is read from the
// locked stock row.
type Adjustment struct {
	Ref        model.StockRef
	ChangeType model.ChangeType
	Change     int
	Reason     string
	Reference  *model.Reference
}

// Recorder writes inventory log entries and applies stock changes.
type Recorder struct {
	stock     repository.StockRepository
	logs      repository.InventoryLogRepository
	publisher Publisher
	now       func() time.Time
	logger    zerolog.Logger

	changes metric.Int64Counter
	delta   metric.Int64UpDownCounter
}

// NewRecorder creates a Recorder. publisher may be nil, in which case
// committed changes are only counted.
func NewRecorder(
	stock repository.StockRepository,
	logs repository.InventoryLogRepository,
	publisher Publisher,
	logger zerolog.Logger,
) *Recorder {
	meter := otel.Meter("calcio-stop/inventory")
	changes, _ := meter.Int64Counter("inventory_changes",
		metric.WithDescription("Committed inventory log entries"))
	delta, _ := meter.Int64UpDownCounter("inventory_quantity_delta",
		metric.WithDescription("Net stock movement across committed inventory log entries"))

	return &Recorder{
		stock:     stock,
		logs:      logs,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With().Str("component", "inventory_recorder").Logger(),
		changes:   changes,
		delta:     delta,
	}
}

// RecordChange validates change and appends its log entry within tx.
// It does not touch the stored quantity.
func (r *Recorder) RecordChange(ctx context.Context, tx pgx.Tx, change model.StockChange) (*model.InventoryLog, error) {
	log, err := model.NewInventoryLog(change, r.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := r.logs.Insert(ctx, tx, log); err != nil {
		return nil, fmt.Errorf("failed to record inventory change: %w", err)
	}

	return log, nil
}

// Apply locks the stock row, checks the change against the current
// quantity, stores the new quantity and appends the log entry, all within
// tx. Nothing is written when the change would make stock negative.
func (r *Recorder) Apply(ctx context.Context, tx pgx.Tx, adj Adjustment) (*model.InventoryLog, error) {
	if err := adj.Ref.Validate(); err != nil {
		return nil, err
	}

	before, archived, err := r.stock.LockQuantity(ctx, tx, adj.Ref)
	if err != nil {
		return nil, err
	}
	if archived {
		return nil, model.NewValidationError("archivedAt",
			fmt.Sprintf("%s is archived; restore it before changing stock", adj.Ref))
	}

	log, err := model.NewInventoryLog(model.StockChange{
		Ref:            adj.Ref,
		ChangeType:     adj.ChangeType,
		QuantityBefore: before,
		QuantityChange: adj.Change,
		Reason:         adj.Reason,
		Reference:      adj.Reference,
	}, r.now().UTC())
	if err != nil {
		r.logger.Debug().
			Err(err).
			Str("stock_ref", adj.Ref.String()).
			Int("before", before).
			Int("change", adj.Change).
			Msg("stock change rejected")
		return nil, err
	}

	if err := r.stock.SetQuantity(ctx, tx, adj.Ref, log.QuantityAfter); err != nil {
		return nil, err
	}

	if err := r.logs.Insert(ctx, tx, log); err != nil {
		return nil, fmt.Errorf("failed to record inventory change: %w", err)
	}

	return log, nil
}

// Published reports committed log entries: it updates the counters and
// hands each entry to the publisher. Publication is best effort.
func (r *Recorder) Published(ctx context.Context, logs []*model.InventoryLog) {
	for _, log := range logs {
		attrs := metric.WithAttributes(
			attribute.String("entity_type", string(log.EntityType)),
			attribute.String("change_type", string(log.ChangeType)),
		)
		r.changes.Add(ctx, 1, attrs)
		r.delta.Add(ctx, int64(log.QuantityChange), attrs)

		if r.publisher == nil {
			continue
		}
		if err := r.publisher.Publish(ctx, log.EntityID.String(), log); err != nil {
			r.logger.Warn().
				Err(err).
				Str("log_id", log.ID.String()).
				Str("entity_id", log.EntityID.String()).
				Msg("failed to publish inventory change")
		}
	}
}
