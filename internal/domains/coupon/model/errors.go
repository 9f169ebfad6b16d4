package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeCouponNotFound     = "CPN001"
	ErrCodeCouponExpired      = "CPN002"
	ErrCodeCouponLimitReached = "CPN003"
	ErrCodeCouponAlreadyUsed  = "CPN004"
	ErrCodeInvalidAmount      = "CPN005"
)

// Business-rule rejections. Expected conditions, returned as typed
// reasons rather than treated as failures.
var (
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponExpired      = errors.New("coupon is outside its validity window")
	ErrCouponLimitReached = errors.New("coupon usage limit reached")
	ErrCouponAlreadyUsed  = errors.New("coupon already used by this customer")
	ErrInvalidAmount      = errors.New("order amount must be non-negative")
)

// Reason maps a ledger rejection to its wire-level reason code
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrCouponExpired):
		return "EXPIRED"
	case errors.Is(err, ErrCouponLimitReached):
		return "LIMIT_REACHED"
	case errors.Is(err, ErrCouponAlreadyUsed):
		return "ALREADY_USED"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	default:
		return ""
	}
}

type CouponError struct {
	Code    string
	Message string
	Err     error
}

func (e *CouponError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CouponError) Unwrap() error {
	return e.Err
}

func NewCouponError(code, message string, err error) *CouponError {
	return &CouponError{Code: code, Message: message, Err: err}
}
