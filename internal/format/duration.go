package format

import (
	"fmt"
	"math"
)

// NotAvailable is the sentinel rendered for missing values.
const NotAvailable = "N/A"

const (
	minutesInHour  = 60
	minutesInDay   = 24 * minutesInHour
	minutesInMonth = 30 * minutesInDay // approximate month
)

// FormatMinutes renders a minute count as a human sentence, largest tier first.
// Every component is floored, never rounded up; at the month tier the hour and
// minute remainders are dropped entirely. Nil renders as "N/A".
func FormatMinutes(totalMinutes *float64) string {
	if totalMinutes == nil {
		return NotAvailable
	}
	total := *totalMinutes

	switch {
	case total >= minutesInMonth:
		months := int(total / minutesInMonth)
		remaining := math.Mod(total, minutesInMonth)
		days := int(remaining / minutesInDay)
		return fmt.Sprintf("%d months %d days", months, days)
	case total >= minutesInDay:
		days := int(total / minutesInDay)
		remaining := math.Mod(total, minutesInDay)
		hours := int(remaining / minutesInHour)
		minutes := int(math.Mod(remaining, minutesInHour))
		return fmt.Sprintf("%d days %d hours %d minutes", days, hours, minutes)
	case total >= minutesInHour:
		hours := int(total / minutesInHour)
		minutes := int(math.Mod(total, minutesInHour))
		return fmt.Sprintf("%d hours %d minutes", hours, minutes)
	default:
		return fmt.Sprintf("%d minutes", int(total))
	}
}
