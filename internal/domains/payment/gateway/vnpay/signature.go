package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// =====================================================
// VNPAY SIGNATURE
// =====================================================
//
// The hash input is wire-format sensitive: parameters sorted by name
// ascending, PHP-style urlencoded (space -> '+', ':' -> '%3A',
// '/' -> '%2F'), joined with '&'. The same encoded string is both the
// query string sent to the gateway and the HMAC-SHA512 input, so a
// byte-for-byte match is required for the signature to validate.

// EncodeParams builds the sorted, encoded query string over every
// non-empty parameter except the signature fields themselves.
func EncodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, phpURLEncode(k)+"="+phpURLEncode(params[k]))
	}
	return strings.Join(parts, "&")
}

// Sign computes the uppercase hex HMAC-SHA512 of the encoded params
func Sign(params map[string]string, secret string) string {
	return hashString(EncodeParams(params), secret)
}

// VerifySignature recomputes the signature over the callback params and
// compares it against the vnp_SecureHash the gateway sent.
func VerifySignature(params map[string]string, secret string) bool {
	received := params["vnp_SecureHash"]
	if received == "" {
		return false
	}
	expected := Sign(params, secret)
	return hmac.Equal([]byte(strings.ToUpper(received)), []byte(expected))
}

func hashString(data, secret string) string {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(data))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

// phpURLEncode encodes like PHP's urlencode(): spaces become '+',
// reserved characters become %XX.
func phpURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%20", "+")
}
