// Package recurrence computes the next due timestamp for recurring expenses.
//
// Monthly and yearly steps clamp the day of month to the end of shorter
// months: Jan 31 plus one month is Feb 28/29, and Feb 29 plus one year is
// Feb 28. No original-day anchor is retained across steps, so a template that
// clamps once stays on the clamped day from then on.
package recurrence

import (
	"fmt"
	"time"

	"moneta/internal/calendar"
	"moneta/internal/models"
)

// NextOccurrence returns the due timestamp one frequency step after base.
// The result depends only on the arguments and always advances strictly
// past base.
func NextOccurrence(base time.Time, frequency models.Frequency) (time.Time, error) {
	switch frequency {
	case models.FrequencyDaily:
		return base.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return base.AddDate(0, 0, 7), nil
	case models.FrequencyBiweekly:
		return base.AddDate(0, 0, 14), nil
	case models.FrequencyMonthly:
		return calendar.AddMonthsClamped(base, 1), nil
	case models.FrequencyYearly:
		return calendar.AddYearsClamped(base, 1), nil
	default:
		return time.Time{}, fmt.Errorf("unknown frequency: %q", frequency)
	}
}
