package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"busticket-backend/internal/domains/coupon/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresCouponRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCouponRepository(pool *pgxpool.Pool) CouponRepository {
	return &postgresCouponRepository{pool: pool}
}

// =====================================================
// TRANSACTION MANAGEMENT
// =====================================================

func (r *postgresCouponRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *postgresCouponRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *postgresCouponRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

const couponColumns = `
	id, code, company_id, discount_type, discount_value, max_discount_value,
	max_uses, used_count, valid_from, valid_to, status, created_at
`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.CompanyID,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MaxDiscountValue,
		&c.MaxUses,
		&c.UsedCount,
		&c.ValidFrom,
		&c.ValidTo,
		&c.Status,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to scan coupon: %w", err)
	}
	return &c, nil
}

func (r *postgresCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	return scanCoupon(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresCouponRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 FOR UPDATE`
	return scanCoupon(tx.QueryRow(ctx, query, id))
}

// =====================================================
// USAGE COUNTER
// =====================================================

// IncrementUsage reserves one usage slot. The WHERE guard keeps the
// counter below max_uses even under concurrent appliers.
func (r *postgresCouponRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE id = $1 AND used_count < max_uses
	`
	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresCouponRepository) DecrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET used_count = used_count - 1
		WHERE id = $1 AND used_count > 0
	`
	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to decrement coupon usage: %w", err)
	}
	return nil
}

// =====================================================
// USAGE RECORDS
// =====================================================

func (r *postgresCouponRepository) HasActiveUsage(ctx context.Context, customerID, couponID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM coupon_usages
			WHERE customer_id = $1 AND coupon_id = $2 AND is_active
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, customerID, couponID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check coupon usage: %w", err)
	}
	return exists, nil
}

func (r *postgresCouponRepository) InsertUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (id, customer_id, coupon_id, order_id, used_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.Exec(ctx, query,
		usage.ID,
		usage.CustomerID,
		usage.CouponID,
		usage.OrderID,
		usage.UsedAt,
		usage.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert coupon usage: %w", err)
	}
	return nil
}

func (r *postgresCouponRepository) GetActiveUsageByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.CouponUsage, error) {
	query := `
		SELECT id, customer_id, coupon_id, order_id, used_at, is_active
		FROM coupon_usages
		WHERE order_id = $1 AND is_active
		FOR UPDATE
	`
	var u model.CouponUsage
	err := tx.QueryRow(ctx, query, orderID).Scan(
		&u.ID,
		&u.CustomerID,
		&u.CouponID,
		&u.OrderID,
		&u.UsedAt,
		&u.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coupon usage by order: %w", err)
	}
	return &u, nil
}

func (r *postgresCouponRepository) DeactivateUsage(ctx context.Context, tx pgx.Tx, usageID uuid.UUID) error {
	query := `UPDATE coupon_usages SET is_active = FALSE WHERE id = $1 AND is_active`
	if _, err := tx.Exec(ctx, query, usageID); err != nil {
		return fmt.Errorf("failed to deactivate coupon usage: %w", err)
	}
	return nil
}
