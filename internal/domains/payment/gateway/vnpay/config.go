package vnpay

import (
	"fmt"
)

// =====================================================
// VNPAY CONFIGURATION
// =====================================================

type Config struct {
	TmnCode    string // Merchant code (provided by VNPay)
	HashSecret string // Secret key for HMAC-SHA512 signature
	BaseURL    string // VNPay payment gateway URL
	ReturnURL  string // Where the gateway sends the browser back
	Version    string // VNPay API version (default: "2.1.0")
	Command    string // Command type (default: "pay")
	CurrCode   string // Currency code (default: "VND")
	Locale     string // Language (default: "vn")
}

func NewConfig(tmnCode, hashSecret, baseURL, returnURL string) *Config {
	return &Config{
		TmnCode:    tmnCode,
		HashSecret: hashSecret,
		BaseURL:    baseURL,
		ReturnURL:  returnURL,
		Version:    "2.1.0",
		Command:    "pay",
		CurrCode:   "VND",
		Locale:     "vn",
	}
}

func (c *Config) Validate() error {
	if c.TmnCode == "" {
		return fmt.Errorf("VNPay TmnCode is required")
	}
	if c.HashSecret == "" {
		return fmt.Errorf("VNPay HashSecret is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("VNPay BaseURL is required")
	}
	if c.ReturnURL == "" {
		return fmt.Errorf("VNPay ReturnURL is required")
	}
	return nil
}

// PaymentURL returns the full payment endpoint
func (c *Config) PaymentURL() string {
	return c.BaseURL + "/vpcpay.html"
}

// =====================================================
// VNPAY CONSTANTS
// =====================================================

const (
	// Response codes
	ResponseCodeSuccess             = "00"
	ResponseCodeTransactionTimeout  = "07"
	ResponseCodeCardLocked          = "10"
	ResponseCodeOTPExpired          = "11"
	ResponseCodeIncorrectOTP        = "13"
	ResponseCodeUserCancelled       = "24"
	ResponseCodeInsufficientBalance = "51"
	ResponseCodeLimitExceeded       = "65"
	ResponseCodeBankMaintenance     = "75"
	ResponseCodeTimeout             = "79"
)

// ResponseMessage returns a human-readable message for a response code
func ResponseMessage(code string) string {
	messages := map[string]string{
		ResponseCodeSuccess:             "Transaction successful",
		ResponseCodeTransactionTimeout:  "Transaction expired",
		ResponseCodeCardLocked:          "Card is locked",
		ResponseCodeOTPExpired:          "OTP expired",
		ResponseCodeIncorrectOTP:        "Incorrect OTP entered too many times",
		ResponseCodeUserCancelled:       "Customer cancelled the transaction",
		ResponseCodeInsufficientBalance: "Insufficient account balance",
		ResponseCodeLimitExceeded:       "Payment limit exceeded",
		ResponseCodeBankMaintenance:     "Bank under maintenance",
		ResponseCodeTimeout:             "Transaction timed out",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Unknown gateway error"
}
