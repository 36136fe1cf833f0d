package postgres

import (
	"context"
	"fmt"

	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implements StockRepository over PostgreSQL.
type StockRepo struct {
	q Querier
}

// NewStockRepository builds the adapter. Accepts a pool or a tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) ListByActor(ctx context.Context, actorID string) ([]entity.StockItem, error) {
	query := `
		SELECT id, user_id, item_name, unit, quantity, cost_price_per_unit, min_quantity_threshold, last_updated
		FROM stock_items
		WHERE user_id = $1
		ORDER BY item_name, unit`
	rows, err := r.q.Query(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("list stock by actor: %w", err)
	}
	defer rows.Close()
	var items []entity.StockItem
	for rows.Next() {
		var it entity.StockItem
		if err := rows.Scan(
			&it.ID, &it.ActorID, &it.ItemName, &it.Unit,
			&it.Quantity, &it.CostPricePerUnit, &it.MinQuantityThreshold, &it.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *StockRepo) FindByActorAndName(ctx context.Context, actorID, itemName string) ([]entity.StockItem, error) {
	query := `
		SELECT id, user_id, item_name, unit, quantity, cost_price_per_unit, min_quantity_threshold, last_updated
		FROM stock_items
		WHERE user_id = $1 AND item_name = $2
		ORDER BY unit`
	rows, err := r.q.Query(ctx, query, actorID, itemName)
	if err != nil {
		return nil, fmt.Errorf("find stock by actor and name: %w", err)
	}
	defer rows.Close()
	var items []entity.StockItem
	for rows.Next() {
		var it entity.StockItem
		if err := rows.Scan(
			&it.ID, &it.ActorID, &it.ItemName, &it.Unit,
			&it.Quantity, &it.CostPricePerUnit, &it.MinQuantityThreshold, &it.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *StockRepo) Upsert(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, user_id, item_name, unit, quantity, cost_price_per_unit, min_quantity_threshold, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (user_id, item_name, unit)
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			cost_price_per_unit = EXCLUDED.cost_price_per_unit,
			min_quantity_threshold = EXCLUDED.min_quantity_threshold,
			last_updated = now()`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.ActorID, item.ItemName, item.Unit,
		item.Quantity, item.CostPricePerUnit, item.MinQuantityThreshold,
	)
	if err != nil {
		return fmt.Errorf("upsert stock item: %w", err)
	}
	return nil
}

func (r *StockRepo) ActorsWithStock(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM stock_items ORDER BY user_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list actors with stock: %w", err)
	}
	defer rows.Close()
	var actors []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan actor id: %w", err)
		}
		actors = append(actors, id)
	}
	return actors, rows.Err()
}
