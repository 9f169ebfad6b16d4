package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// LookupRequest is the public lookup form: the ticket code plus the
// contact pair the booking was made with.
type LookupRequest struct {
	TicketCode string `json:"ticket_code"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

func (r LookupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TicketCode, validation.Required, validation.Length(4, 64)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Phone, validation.Required, validation.Length(6, 20)),
	)
}

// MyTicketsQuery is the pagination input for the authenticated listing
type MyTicketsQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize clamps pagination to sane bounds
func (q *MyTicketsQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}
