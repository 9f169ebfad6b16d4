package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"busticket-backend/internal/domains/coupon/model"
)

// Service is the Coupon Ledger: the single authoritative place where
// used_count changes. Validate/Apply run at booking time; RecordUsage
// and ReverseUsage run inside the reconciliation transaction, which is
// why they accept the caller's pgx.Tx.
type Service interface {
	// Validate checks the coupon against the customer with no side
	// effects. Returns a typed business-rule error on rejection.
	Validate(ctx context.Context, couponID, customerID uuid.UUID) error

	// Apply re-validates inside one storage transaction, reserves a
	// usage slot via the guarded increment and returns the amounts.
	Apply(ctx context.Context, couponID, customerID uuid.UUID, originAmount decimal.Decimal) (*model.ApplyResult, error)

	// Preview is the read-only pricing endpoint behind POST /coupons/preview
	Preview(ctx context.Context, customerID uuid.UUID, req model.PreviewRequest) (*model.PreviewResponse, error)

	// RecordUsage inserts the permanent usage row; called only after a
	// successful payment, within the reconciliation transaction.
	RecordUsage(ctx context.Context, tx pgx.Tx, customerID, couponID, orderID uuid.UUID) error

	// ReverseUsage deactivates the order's active usage (if any) and
	// restores the slot. Idempotent on the usage row: a second call
	// finds it inactive and decrements nothing. When no usage row
	// exists but the order carried a coupon (payment failed before
	// RecordUsage ran), the apply-time reservation is released instead.
	ReverseUsage(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, couponID *uuid.UUID) error

	// ReleaseSlot undoes an Apply whose booking never got persisted
	ReleaseSlot(ctx context.Context, couponID uuid.UUID) error
}
