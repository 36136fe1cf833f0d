package repository

import (
	"context"

	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
)

// StockRepository is the port for the per-shopkeeper inventory catalog.
type StockRepository interface {
	ListByActor(ctx context.Context, actorID string) ([]entity.StockItem, error)
	// FindByActorAndName returns every row whose name matches exactly,
	// one row per stored unit.
	FindByActorAndName(ctx context.Context, actorID, itemName string) ([]entity.StockItem, error)
	Upsert(ctx context.Context, item *entity.StockItem) error
	// ActorsWithStock lists every shopkeeper that has at least one
	// catalog row, for the daily insight pass.
	ActorsWithStock(ctx context.Context) ([]string, error)
}
