package exporter

import "fmt"

// formatFloat formats a value for CSV output with exactly 4 decimal places,
// matching the display precision of the result tables.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// formatInt formats an int value for CSV output.
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
