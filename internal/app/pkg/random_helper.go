package pkg

import (
	"math/rand"
	"time"
)

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// BookingReference returns a human-friendly reference such as
// BK-20261014-7KQ2MX. Ambiguous characters (0, O, 1, I) are never used.
func BookingReference(now time.Time) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = referenceAlphabet[rand.Intn(len(referenceAlphabet))]
	}
	return "BK-" + now.UTC().Format("20060102") + "-" + string(b)
}
