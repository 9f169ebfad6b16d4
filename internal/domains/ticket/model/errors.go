package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeTicketNotFound = "TKT001"
	ErrCodeUnauthorized   = "TKT002"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrUnauthorized covers the "exists but not yours" case. The
	// handler maps it to 403 so a probing caller can distinguish a
	// wrong contact pair from an unknown code, which is acceptable:
	// ticket codes are unguessable.
	ErrUnauthorized = errors.New("contact details do not match ticket owner")
)
