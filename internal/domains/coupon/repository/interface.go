package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"busticket-backend/internal/domains/coupon/model"
)

// CouponRepository is the ledger's data access. All used_count mutation
// goes through the conditional Increment/Decrement queries so two
// concurrent appliers can never both take the last slot.
type CouponRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	// GetByIDForUpdate locks the coupon row for the duration of tx
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Coupon, error)
	// IncrementUsage performs the guarded increment
	// (used_count = used_count + 1 WHERE used_count < max_uses).
	// Returns false when no slot was available.
	IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	// DecrementUsage restores a slot, guarded against going negative
	DecrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	HasActiveUsage(ctx context.Context, customerID, couponID uuid.UUID) (bool, error)
	InsertUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error
	// GetActiveUsageByOrder returns nil when the order has no active usage
	GetActiveUsageByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.CouponUsage, error)
	DeactivateUsage(ctx context.Context, tx pgx.Tx, usageID uuid.UUID) error
}
