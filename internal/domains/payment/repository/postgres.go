package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	bookingModel "busticket-backend/internal/domains/booking/model"
	"busticket-backend/internal/domains/payment/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresReconciliationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresReconciliationRepository(pool *pgxpool.Pool) ReconciliationRepository {
	return &postgresReconciliationRepository{pool: pool}
}

func (r *postgresReconciliationRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *postgresReconciliationRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *postgresReconciliationRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

func (r *postgresReconciliationRepository) GetOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*bookingModel.Order, error) {
	query := `
		SELECT id, customer_id, coupon_id, origin_amount, final_amount, status, created_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`
	var o bookingModel.Order
	err := tx.QueryRow(ctx, query, orderID).Scan(
		&o.ID,
		&o.CustomerID,
		&o.CouponID,
		&o.OriginAmount,
		&o.FinalAmount,
		&o.Status,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return &o, nil
}

func (r *postgresReconciliationRepository) UpdateOrderStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status bookingModel.OrderStatus) error {
	query := `UPDATE orders SET status = $2 WHERE id = $1`
	if _, err := tx.Exec(ctx, query, orderID, status); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

func (r *postgresReconciliationRepository) UpdateTicketStatusByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to bookingModel.TicketStatus) error {
	query := `UPDATE tickets SET status = $3 WHERE order_id = $1 AND status = $2`
	if _, err := tx.Exec(ctx, query, orderID, from, to); err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	return nil
}

func (r *postgresReconciliationRepository) InsertTransaction(ctx context.Context, tx pgx.Tx, txn *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, order_id, amount, payment_method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := tx.QueryRow(ctx, query,
		txn.ID,
		txn.OrderID,
		txn.Amount,
		txn.PaymentMethod,
		txn.Status,
	).Scan(&txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *postgresReconciliationRepository) ListExpiredPendingOrders(ctx context.Context, olderThan time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM orders
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired orders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
