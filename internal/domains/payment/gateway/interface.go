package gateway

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"
)

// PaymentURLRequest carries everything the bridge needs to build the
// signed redirect for one order.
type PaymentURLRequest struct {
	OrderID   string
	Amount    decimal.Decimal
	OrderInfo string
	ClientIP  string
}

// CallbackData is the verified, descaled view of a gateway callback
type CallbackData struct {
	OrderRef      string
	TransactionNo string
	Amount        decimal.Decimal
	ResponseCode  string
	Success       bool
	BankCode      string
	CardType      string
	PayDate       string
}

// PaymentGateway is the outbound bridge to the external payment
// provider. VerifyCallback authenticates the callback's own signature
// before any other field is interpreted.
type PaymentGateway interface {
	BuildPaymentURL(ctx context.Context, req PaymentURLRequest) (string, error)
	VerifyCallback(params url.Values) (*CallbackData, error)
	Name() string
}
