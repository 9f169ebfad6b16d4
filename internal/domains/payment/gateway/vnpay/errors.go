package vnpay

import "errors"

// Integration errors. A bad signature is treated as a hard rejection
// at the edge, not a payment failure, so a forged "failed" callback
// can never cancel someone else's valid booking.
var (
	ErrInvalidSignature  = errors.New("callback signature verification failed")
	ErrMalformedCallback = errors.New("malformed gateway callback")
)
