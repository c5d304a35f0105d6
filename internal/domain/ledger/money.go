package ledger

import "math"

// CostCents computes a labour cost from hours and an hourly rate in cents,
// rounded to the nearest cent.
func CostCents(hours float64, rateCents int64) int64 {
	return int64(math.Round(hours * float64(rateCents)))
}
