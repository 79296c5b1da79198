package analytics

import (
	"fmt"
	"math"
)

// FormatPace formats a pace in seconds per mile as "M:SS",
// or "N/A" when there is no pace to report.
func FormatPace(seconds float64) string {
	if seconds <= 0 {
		return "N/A"
	}
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// formatPaceRange formats a pace zone as a human readable range.
// Zones are open-ended on one side: the slowest has no upper bound
// and the fastest no lower bound.
func formatPaceRange(minSecs, maxSecs float64) string {
	if math.IsInf(maxSecs, 1) {
		return ">" + FormatPace(minSecs)
	}
	if minSecs == 0 {
		return "<" + FormatPace(maxSecs)
	}
	return fmt.Sprintf("%s - %s", FormatPace(maxSecs), FormatPace(minSecs))
}

// formatTimeMinutes formats a duration in minutes as "M:SS".
func formatTimeMinutes(minutes float64) string {
	mins := int(minutes)
	secs := int((minutes - float64(mins)) * 60)
	return fmt.Sprintf("%d:%02d", mins, secs)
}

func round(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
