package repository

import (
	"context"

	"github.com/google/uuid"

	"busticket-backend/internal/domains/ticket/model"
)

// TicketReadRepository serves the lookup projections. It is read-only:
// ticket writes belong to the booking and reconciliation flows.
type TicketReadRepository interface {
	// GetDetailByCode loads the full projection plus the owning
	// customer's contact fields. Returns model.ErrTicketNotFound when
	// no ticket has the code.
	GetDetailByCode(ctx context.Context, code string) (*model.TicketDetail, *model.TicketOwner, error)

	// ListByCustomer pages through a customer's tickets, newest first.
	// Returns the page and the total count.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]model.TicketDetail, int64, error)
}
