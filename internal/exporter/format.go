package exporter

import (
	"fmt"

	"trackpulse/pkg/contracts/domain"
)

// formatFloat formats a rate or percentage value for export with exactly 2
// decimal places, so values like 13.4 appear as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 count for export
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatDays renders the days-since-upload column, empty when absent
func formatDays(days *int) string {
	if days == nil {
		return ""
	}
	return fmt.Sprintf("%d", *days)
}

// formatRatio renders a play/like ratio. Absent and infinite ratios render as
// the empty string: the infinity sentinel is never serialized as a literal
// token.
func formatRatio(r domain.PlayLikeRatio) string {
	if !r.IsFinite() {
		return ""
	}
	return formatFloat(r.Value)
}
