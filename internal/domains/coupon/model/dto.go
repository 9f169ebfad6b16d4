package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// PreviewRequest asks the ledger whether a coupon is usable for the
// caller and what the price would become. No side effects.
type PreviewRequest struct {
	CouponID    string          `json:"coupon_id"`
	OrderAmount decimal.Decimal `json:"order_amount"`
}

func (r PreviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CouponID, validation.Required, is.UUID),
		validation.Field(&r.OrderAmount, validation.By(nonNegativeAmount)),
	)
}

func nonNegativeAmount(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok || amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// PreviewResponse mirrors ApplyResult but also carries the rejection
// reason when the coupon cannot be used.
type PreviewResponse struct {
	Usable         bool             `json:"usable"`
	Reason         string           `json:"reason,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	FinalAmount    *decimal.Decimal `json:"final_amount,omitempty"`
}
