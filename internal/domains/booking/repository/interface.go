package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"busticket-backend/internal/domains/booking/model"
)

// BookingRepository persists the Order aggregate. CreateTickets
// translates the (trip_id, seat_code) unique-index violation into
// model.ErrSeatTaken so the service can reject the booking cleanly.
type BookingRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error

	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error
	CreateTickets(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error
	// TakenSeats returns which of the given seats are already held by a
	// non-cancelled ticket on the trip. A fast pre-check; the unique
	// index remains the authority.
	TakenSeats(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, seats []string) ([]string, error)

	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	GetTicketsByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.Ticket, error)
}
