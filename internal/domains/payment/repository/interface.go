package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	bookingModel "busticket-backend/internal/domains/booking/model"
	"busticket-backend/internal/domains/payment/model"
)

// ReconciliationRepository owns every write the state machine makes.
// Orders and tickets are mutated only here once booking has created
// them; no other component touches these fields.
type ReconciliationRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error

	// GetOrderForUpdate locks the order row so concurrent callback
	// deliveries serialize on it.
	GetOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*bookingModel.Order, error)
	UpdateOrderStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status bookingModel.OrderStatus) error
	// UpdateTicketStatusByOrder flips every ticket of the order that is
	// still in `from` into `to`.
	UpdateTicketStatusByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to bookingModel.TicketStatus) error

	InsertTransaction(ctx context.Context, tx pgx.Tx, txn *model.Transaction) error

	// ListExpiredPendingOrders feeds the abandoned-session sweep
	ListExpiredPendingOrders(ctx context.Context, olderThan time.Time, limit int) ([]uuid.UUID, error)
}
