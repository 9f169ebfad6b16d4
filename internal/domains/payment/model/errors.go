package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeInvalidSignature  = "PAY001"
	ErrCodeOrderNotFound     = "PAY002"
	ErrCodeMalformedCallback = "PAY003"
)

var (
	ErrOrderNotFound = errors.New("order referenced by callback not found")
)
