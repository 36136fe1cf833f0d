package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
)

// TransactionRepository is the port for the khata ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	// ListByActor returns the newest entries first, capped at limit.
	ListByActor(ctx context.Context, actorID string, limit int) ([]entity.Transaction, error)
	// SalesByActorAndDate returns sale entries created on the given
	// calendar day in the shop's timezone.
	SalesByActorAndDate(ctx context.Context, actorID string, day time.Time) ([]entity.Transaction, error)
	// SumByActor returns total sales and total outflows (purchases plus
	// expenses) over the whole ledger.
	SumByActor(ctx context.Context, actorID string) (sales, outflows decimal.Decimal, err error)
}
