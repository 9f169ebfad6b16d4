package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"busticket-backend/internal/domains/ticket/model"
	"busticket-backend/internal/domains/ticket/repository"
)

type ticketService struct {
	repo repository.TicketReadRepository
}

func NewTicketService(repo repository.TicketReadRepository) Service {
	return &ticketService{repo: repo}
}

// Lookup is the public endpoint's only gate: the caller must present
// the exact contact pair the booking was made with. Email matches
// case-insensitively, phone matches exactly after trimming.
func (s *ticketService) Lookup(ctx context.Context, req model.LookupRequest) (*model.TicketDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	detail, owner, err := s.repo.GetDetailByCode(ctx, strings.TrimSpace(req.TicketCode))
	if err != nil {
		return nil, err
	}

	if !contactMatches(owner, req.Email, req.Phone) {
		return nil, model.ErrUnauthorized
	}
	return detail, nil
}

func (s *ticketService) MyTickets(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.TicketDetail, int64, error) {
	q := model.MyTicketsQuery{Page: page, Limit: limit}
	q.Normalize()

	offset := (q.Page - 1) * q.Limit
	return s.repo.ListByCustomer(ctx, customerID, q.Limit, offset)
}

func contactMatches(owner *model.TicketOwner, email, phone string) bool {
	emailOK := strings.EqualFold(strings.TrimSpace(email), owner.Email)
	phoneOK := strings.TrimSpace(phone) == owner.Phone
	return emailOK && phoneOK
}

// IsBusinessError reports whether the error is an expected lookup
// rejection as opposed to a storage failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, model.ErrTicketNotFound) ||
		errors.Is(err, model.ErrUnauthorized)
}
