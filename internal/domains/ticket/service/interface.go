package service

import (
	"context"

	"github.com/google/uuid"

	"busticket-backend/internal/domains/ticket/model"
)

// Service answers the read-side ticket queries. It never mutates state.
type Service interface {
	// Lookup resolves a ticket by code for an unauthenticated caller.
	// Both email and phone must match the owning customer's contact
	// details; a mismatch on either is model.ErrUnauthorized.
	Lookup(ctx context.Context, req model.LookupRequest) (*model.TicketDetail, error)

	// MyTickets lists the authenticated customer's tickets, newest
	// first, with the total count for pagination meta.
	MyTickets(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.TicketDetail, int64, error)
}
