package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound = "BKG001"
	ErrCodeSeatTaken     = "BKG002"
	ErrCodeNoSeats       = "BKG003"
	ErrCodeDuplicateSeat = "BKG004"
	ErrCodeUnauthorized  = "BKG005"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrSeatTaken     = errors.New("seat is already taken for this trip")
	ErrNoSeats       = errors.New("at least one seat must be selected")
	ErrDuplicateSeat = errors.New("duplicate seat in selection")
	ErrUnauthorized  = errors.New("order belongs to another customer")
)

type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func NewBookingError(code, message string, err error) *BookingError {
	return &BookingError{Code: code, Message: message, Err: err}
}
