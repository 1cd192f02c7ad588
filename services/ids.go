package services

import (
	"math/big"
	"strings"

	"github.com/google/uuid"

	"hospital-meal-api/models"
)

// suffixLen fits any 128-bit value in base36.
const suffixLen = 25

// uniqueSuffix renders a random UUID in uppercase base36, zero padded to a
// fixed width.
func uniqueSuffix() string {
	u := uuid.New()
	s := strings.ToUpper(new(big.Int).SetBytes(u[:]).Text(36))
	return strings.Repeat("0", suffixLen-len(s)) + s
}

func newOrderID(t models.OrderType) string {
	prefix := "ORD"
	if t == models.OrderTypeDoctor {
		prefix = "DPJP"
	}
	return prefix + "-" + uniqueSuffix()
}

func newMenuID() string {
	return "M-" + uniqueSuffix()
}

func newID() string {
	return uuid.NewString()
}

// newResetToken joins two independent random tokens into one 64-char string.
func newResetToken() string {
	a, b := uuid.New(), uuid.New()
	return strings.ReplaceAll(a.String()+b.String(), "-", "")
}
