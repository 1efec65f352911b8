package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/robux-town/order-bot/internal/domain"
)

// OrderRepository defines persistence operations for order records. The
// orders table is append-only: records are inserted once and never updated
// or deleted by the bot.
type OrderRepository interface {
	// Create inserts the record and fills in its auto-assigned identifier
	// and creation timestamp.
	Create(ctx context.Context, record *domain.OrderRecord) error
	// ListRecent returns the newest records, newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.OrderRecord, error)
}

type orderRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewOrderRepository creates a new SQL-backed order repository.
func NewOrderRepository(db *sqlx.DB, log *slog.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log,
	}
}

// Create persists a new order record. The single-row insert is atomic, so
// writes from unrelated sessions interleave safely; BIGSERIAL assigns
// monotonically increasing identifiers.
func (r *orderRepository) Create(ctx context.Context, record *domain.OrderRecord) error {
	const query = `
		INSERT INTO orders (user_id, username, amount, price_usd, payment_method, coin, status, thread_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		record.UserID,
		record.Username,
		record.Amount,
		record.PriceUSD,
		record.PaymentMethod,
		record.Coin,
		record.Status,
		record.ThreadID,
	).Scan(&record.ID, &record.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to insert order",
				slog.Int64("user_id", record.UserID),
				slog.Int64("thread_id", record.ThreadID),
				slog.Any("error", err),
			)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// ListRecent retrieves the most recent order records for staff inspection.
func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]domain.OrderRecord, error) {
	const query = `
		SELECT id, user_id, username, amount, price_usd, payment_method, coin, status, thread_id, created_at
		FROM orders
		ORDER BY id DESC
		LIMIT $1
	`

	records := []domain.OrderRecord{}
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		if r.log != nil {
			r.log.Error("failed to list orders", slog.Any("error", err))
		}
		return nil, fmt.Errorf("select recent orders: %w", err)
	}

	return records, nil
}
