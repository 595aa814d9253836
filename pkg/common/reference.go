package common

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const refCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderRef returns a short alphanumeric, gateway-facing order id.
// Uniqueness comes from the timestamp prefix plus a random tail; the
// gateway additionally enforces order-id uniqueness on its side.
func GenerateOrderRef() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	tail := make([]byte, 6)
	for i := range tail {
		tail[i] = refCharset[r.Intn(len(refCharset))]
	}
	return fmt.Sprintf("PW%d%s", time.Now().Unix()%1_000_000_000, tail)
}

// GenerateInvoiceNo builds a sequential-looking invoice number from the
// sale counter, e.g. INV-2026-000042.
func GenerateInvoiceNo(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%06d", year, seq)
}

// SanitizeCustomerField strips characters the gateway rejects from
// customer names, emails and phone numbers. Only letters, digits, spaces
// and a small punctuation set survive.
func SanitizeCustomerField(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '.', r == '-', r == '_', r == '@', r == '+':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
