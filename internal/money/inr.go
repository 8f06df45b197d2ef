package money

import (
	"fmt"
	"math"
)

// RoundINR rounds an amount to whole paise.
func RoundINR(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatINR renders an amount as a rupee string, e.g. "₹1500.00".
func FormatINR(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}

// FormatRate renders a per-unit rate, e.g. "₹20.00/kg".
func FormatRate(rate float64, unit string) string {
	return fmt.Sprintf("₹%.2f/%s", rate, unit)
}
