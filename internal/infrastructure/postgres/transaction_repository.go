package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implements TransactionRepository over PostgreSQL.
// The transactions table is append-only.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository builds the adapter. Accepts a pool or a tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount, item, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, tx.ActorID, string(tx.Type), tx.Amount, tx.Item, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) ListByActor(ctx context.Context, actorID string, limit int) ([]entity.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, item, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions by actor: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *TransactionRepo) SalesByActorAndDate(ctx context.Context, actorID string, day time.Time) ([]entity.Transaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	query := `
		SELECT id, user_id, type, amount, item, created_at
		FROM transactions
		WHERE user_id = $1 AND type = 'sale' AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, actorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list sales by actor and date: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *TransactionRepo) SumByActor(ctx context.Context, actorID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'sale'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type IN ('purchase', 'expense')), 0)
		FROM transactions
		WHERE user_id = $1`
	var sales, outflows decimal.Decimal
	err := r.q.QueryRow(ctx, query, actorID).Scan(&sales, &outflows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, decimal.Zero, nil
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum transactions by actor: %w", err)
	}
	return sales, outflows, nil
}

func scanTransactions(rows pgx.Rows) ([]entity.Transaction, error) {
	var list []entity.Transaction
	for rows.Next() {
		var t entity.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.ActorID, &typ, &t.Amount, &t.Item, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = entity.TransactionType(typ)
		list = append(list, t)
	}
	return list, rows.Err()
}
