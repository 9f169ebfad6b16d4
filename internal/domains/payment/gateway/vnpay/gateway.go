package vnpay

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"busticket-backend/internal/domains/payment/gateway"
)

const GatewayName = "vnpay"

// Gateway implements the payment bridge against VNPay. It builds the
// signed redirect URL and authenticates callbacks; it never talks to
// the gateway synchronously.
type Gateway struct {
	config *Config
	now    func() time.Time
}

func NewGateway(config *Config) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid VNPay config: %w", err)
	}
	return &Gateway{config: config, now: time.Now}, nil
}

func (g *Gateway) Name() string {
	return GatewayName
}

// =====================================================
// BUILD PAYMENT URL
// =====================================================

func (g *Gateway) BuildPaymentURL(ctx context.Context, req gateway.PaymentURLRequest) (string, error) {
	if req.OrderID == "" {
		return "", fmt.Errorf("order id is required")
	}
	if req.Amount.IsNegative() {
		return "", fmt.Errorf("amount must be non-negative")
	}

	clientIP := req.ClientIP
	if clientIP == "" || clientIP == "::1" {
		clientIP = "127.0.0.1"
	}

	params := map[string]string{
		"vnp_Version":    g.config.Version,
		"vnp_Command":    g.config.Command,
		"vnp_TmnCode":    g.config.TmnCode,
		"vnp_Amount":     formatAmount(req.Amount),
		"vnp_CurrCode":   g.config.CurrCode,
		"vnp_TxnRef":     req.OrderID,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     g.config.Locale,
		"vnp_ReturnUrl":  g.config.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": g.now().Format("20060102150405"),
	}

	query := EncodeParams(params)
	secureHash := hashString(query, g.config.HashSecret)

	return fmt.Sprintf("%s?%s&vnp_SecureHash=%s", g.config.PaymentURL(), query, secureHash), nil
}

// =====================================================
// VERIFY CALLBACK
// =====================================================

// VerifyCallback authenticates the callback signature first; a bad or
// missing signature is a hard rejection, never a payment failure.
func (g *Gateway) VerifyCallback(values url.Values) (*gateway.CallbackData, error) {
	params := make(map[string]string)
	for key := range values {
		if strings.HasPrefix(key, "vnp_") {
			params[key] = values.Get(key)
		}
	}

	for _, field := range []string{"vnp_TxnRef", "vnp_ResponseCode", "vnp_SecureHash"} {
		if params[field] == "" {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedCallback, field)
		}
	}

	if !VerifySignature(params, g.config.HashSecret) {
		return nil, ErrInvalidSignature
	}

	amount, err := parseAmount(params["vnp_Amount"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	code := params["vnp_ResponseCode"]
	return &gateway.CallbackData{
		OrderRef:      params["vnp_TxnRef"],
		TransactionNo: params["vnp_TransactionNo"],
		Amount:        amount,
		ResponseCode:  code,
		Success:       code == ResponseCodeSuccess,
		BankCode:      params["vnp_BankCode"],
		CardType:      params["vnp_CardType"],
		PayDate:       params["vnp_PayDate"],
	}, nil
}

// formatAmount renders whole currency units scaled by 100, as the
// gateway requires. Example: 550000 VND -> "55000000".
func formatAmount(amount decimal.Decimal) string {
	return amount.Round(0).Mul(decimal.NewFromInt(100)).StringFixed(0)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	scaled, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return decimal.NewFromInt(scaled).Div(decimal.NewFromInt(100)), nil
}
