// Package quote implements shipping price estimation and tracking-ID
// generation for the MOVEXA tracking service.
package quote

import (
	"encoding/hex"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidWeight = errors.New("quote: weight must be a valid number greater than zero")

const (
	baseFee        = 20.00
	costPerKG      = 5.00
	intlMultiplier = 1.5

	trackingPrefix = "MVX-"
)

// Quote is one computed shipping estimate.
type Quote struct {
	Amount        float64
	Currency      string
	International bool
}

// Calculate prices a shipment: flat base fee plus a per-kilogram rate, with
// an international surcharge when the origin and destination zones differ.
// The zone is the last comma-separated token of the address.
func Calculate(origin, destination string, weight float64) (Quote, error) {
	if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return Quote{}, ErrInvalidWeight
	}

	international := Zone(origin) != Zone(destination)
	amount := baseFee + weight*costPerKG
	if international {
		amount *= intlMultiplier
	}

	return Quote{
		Amount:        math.Round(amount*100) / 100,
		Currency:      "USD",
		International: international,
	}, nil
}

// Zone extracts the pricing zone from a free-form address.
func Zone(addr string) string {
	parts := strings.Split(addr, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}

// NewTrackingID generates a unique MOVEXA tracking ID: MVX- followed by
// eight uppercase hex characters.
func NewTrackingID() string {
	u := uuid.New()
	return trackingPrefix + strings.ToUpper(hex.EncodeToString(u[:4]))
}

// PlaceholderID derives a form-prefill tracking ID from a timestamp, used by
// the admin console when suggesting an ID for a new shipment.
func PlaceholderID(t time.Time) string {
	stamp := t.Format("20060102150405")
	return trackingPrefix + stamp[len(stamp)-8:]
}
