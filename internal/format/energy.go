package format

import "fmt"

// FormatKWh renders an energy amount in the largest sensible unit.
func FormatKWh(kwh *float64) string {
	if kwh == nil {
		return NotAvailable
	}
	v := *kwh

	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.3f TWh", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.2f MWh", v/1_000)
	default:
		return fmt.Sprintf("%.2f kWh", v)
	}
}
