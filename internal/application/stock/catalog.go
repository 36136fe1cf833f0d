package stock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gupta-labs/khata-sahayak/internal/domain"
	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/internal/domain/repository"
	"github.com/gupta-labs/khata-sahayak/internal/domain/units"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// Catalog owns per-shopkeeper stock entries. Mutations of the same
// (actor, item, unit) tuple are serialized with a keyed mutex so two
// near-simultaneous messages cannot race a read-modify-write.
type Catalog struct {
	repo repository.StockRepository
	log  *logger.Logger

	// rejectOversell turns an oversell into an error instead of clamping
	// the quantity at zero.
	rejectOversell bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCatalog(repo repository.StockRepository, log *logger.Logger, rejectOversell bool) *Catalog {
	return &Catalog{
		repo:           repo,
		log:            log,
		rejectOversell: rejectOversell,
		locks:          make(map[string]*sync.Mutex),
	}
}

func (c *Catalog) entryLock(actorID, itemName, unit string) *sync.Mutex {
	key := actorID + "|" + strings.ToLower(itemName) + "|" + units.Normalize(unit)
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// Lookup returns the full catalog snapshot for an actor, ordered by name.
func (c *Catalog) Lookup(ctx context.Context, actorID string) ([]entity.StockItem, error) {
	return c.repo.ListByActor(ctx, actorID)
}

// LowStock returns the entries at or below their reorder threshold.
func (c *Catalog) LowStock(ctx context.Context, actorID string) ([]entity.StockItem, error) {
	items, err := c.repo.ListByActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	low := make([]entity.StockItem, 0)
	for _, it := range items {
		if it.IsLow() {
			low = append(low, it)
		}
	}
	return low, nil
}

// ApplyDelta adjusts an item's quantity, creating the entry on first touch.
//
// Among rows sharing the name, the one stored in the incoming unit wins;
// otherwise the first row does, and the arithmetic converts through base
// units back into that row's own unit. A negative delta never takes the
// quantity below zero: it is clamped, or rejected when oversell rejection
// is on. The cost price is overwritten only when the caller supplies one.
func (c *Catalog) ApplyDelta(ctx context.Context, actorID, itemName string, delta decimal.Decimal, unit string, costPricePerUnit *decimal.Decimal) (*entity.StockItem, error) {
	lock := c.entryLock(actorID, itemName, unit)
	lock.Lock()
	defer lock.Unlock()

	rows, err := c.repo.FindByActorAndName(ctx, actorID, itemName)
	if err != nil {
		return nil, err
	}

	var target *entity.StockItem
	for i := range rows {
		if units.Normalize(rows[i].Unit) == units.Normalize(unit) {
			target = &rows[i]
			break
		}
	}
	if target == nil && len(rows) > 0 {
		target = &rows[0]
	}

	if target == nil {
		return c.createEntry(ctx, actorID, itemName, delta, unit, costPricePerUnit)
	}

	storedBase, baseUnit := units.ToBase(target.Quantity, target.Unit)
	deltaBase, _ := units.ToBase(delta, unit)
	newBase := storedBase.Add(deltaBase)
	if newBase.IsNegative() {
		if c.rejectOversell {
			return nil, domain.ErrInsufficientStock
		}
		c.log.Warn().
			Str("actor_id", actorID).
			Str("item", itemName).
			Str("delta", delta.String()).
			Msg("clamping oversell to zero")
		newBase = decimal.Zero
	}

	target.Quantity = units.FromBase(newBase, baseUnit, target.Unit)
	if costPricePerUnit != nil {
		target.CostPricePerUnit = *costPricePerUnit
	}
	target.LastUpdated = time.Now().UTC()

	if err := c.repo.Upsert(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (c *Catalog) createEntry(ctx context.Context, actorID, itemName string, delta decimal.Decimal, unit string, costPricePerUnit *decimal.Decimal) (*entity.StockItem, error) {
	base, baseUnit := units.ToBase(delta, unit)
	if base.IsNegative() {
		if c.rejectOversell {
			return nil, domain.ErrInsufficientStock
		}
		// a sale against an item never purchased: record the entry at
		// zero so the catalog learns the item, but fabricate no stock
		base = decimal.Zero
	}

	item := &entity.StockItem{
		ID:                   uuid.NewString(),
		ActorID:              actorID,
		ItemName:             itemName,
		Unit:                 units.Normalize(unit),
		Quantity:             units.FromBase(base, baseUnit, unit),
		MinQuantityThreshold: decimal.Zero,
		LastUpdated:          time.Now().UTC(),
	}
	if costPricePerUnit != nil {
		item.CostPricePerUnit = *costPricePerUnit
	}
	if err := c.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
