package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := NewTicketCode()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(code, "TKT-"))
		assert.Len(t, code, 4+16, "10 random bytes encode to 16 base32 chars")
		assert.NotContains(t, code[4:], "0")
		assert.NotContains(t, code[4:], "1")
		assert.NotContains(t, code[4:], "O")
		assert.NotContains(t, code[4:], "I")

		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestQRPayloadFor_Deterministic(t *testing.T) {
	code := "TKT-ABCDE23456FGHJK"

	p1 := QRPayloadFor(code)
	p2 := QRPayloadFor(code)
	assert.Equal(t, p1, p2, "re-rendering must not change the QR")

	assert.True(t, strings.HasPrefix(p1, code+"."))
	assert.NotEqual(t, p1, QRPayloadFor("TKT-OTHER"), "payload binds to the code")
}

func TestOrderIsTerminal(t *testing.T) {
	assert.False(t, (&Order{Status: OrderStatusPending}).IsTerminal())
	assert.True(t, (&Order{Status: OrderStatusCompleted}).IsTerminal())
	assert.True(t, (&Order{Status: OrderStatusFailed}).IsTerminal())
}
