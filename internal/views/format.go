package views

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Capacity thresholds shared by the dashboard and the warehouse table
const (
	DangerThreshold  = 90.0
	WarningThreshold = 75.0
)

// CapacityClass maps a fill percentage to a bar colour
func CapacityClass(percent float64) string {
	switch {
	case percent >= DangerThreshold:
		return "danger"
	case percent >= WarningThreshold:
		return "warning"
	default:
		return "success"
	}
}

// FormatPercent renders a percentage with a fixed number of decimals, rounding
// half away from zero.
func FormatPercent(percent float64, places int32) string {
	return decimal.NewFromFloat(percent).StringFixed(places) + "%"
}

// barWidth is the CSS width of a capacity bar, clamped to [0, 100]
func barWidth(percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return decimal.NewFromFloat(percent).StringFixed(1)
}

// LocationCountLabel renders "1 location" or "N locations"
func LocationCountLabel(n int) string {
	if n == 1 {
		return "1 location"
	}
	return fmt.Sprintf("%d locations", n)
}

// ShowingLabel renders the filter summary
func ShowingLabel(shown, total int) string {
	return fmt.Sprintf("Showing %d of %d items", shown, total)
}
