// Package payday computes the next payment date for an income profile and
// keeps the cached value fresh as time passes.
package payday

import (
	"time"

	"moneta/internal/calendar"
	"moneta/internal/models"
)

// Next computes the next payment date for the profile relative to today.
//
// Monthly and specific-date frequencies target the credit day of the current
// month (clamped into short months), rolling to the next month once today's
// day of month has passed the credit day. Without a credit day the target is
// the last day of the current month. Weekly and biweekly frequencies step
// from the last payment date, or from today when no payment has been
// recorded yet.
func Next(profile *models.IncomeProfile, today time.Time) time.Time {
	switch profile.PaymentFrequency {
	case models.PaymentMonthly, models.PaymentSpecificDate:
		if profile.CreditDay == nil {
			return calendar.StartOfDay(calendar.EndOfMonth(today))
		}
		year, month := today.Year(), today.Month()
		if today.Day() > *profile.CreditDay {
			next := calendar.StartOfMonth(today).AddDate(0, 1, 0)
			year, month = next.Year(), next.Month()
		}
		day := calendar.ClampDayToMonth(year, month, *profile.CreditDay)
		return time.Date(year, month, day, 0, 0, 0, 0, today.Location())

	case models.PaymentBiweekly:
		return stepFromLast(profile.LastPaymentDate, today, 14)
	case models.PaymentWeekly:
		return stepFromLast(profile.LastPaymentDate, today, 7)
	default:
		// Unreachable for validated profiles; fall back to the first of
		// next month.
		return calendar.StartOfMonth(today).AddDate(0, 1, 0)
	}
}

func stepFromLast(last *time.Time, today time.Time, days int) time.Time {
	if last != nil {
		return last.AddDate(0, 0, days)
	}
	return today.AddDate(0, 0, days)
}

// Refresh checks the profile's cached NextPaymentDate against today and
// recomputes it when stale, mutating the profile in place. It reports
// whether anything changed, so the caller can persist the correction in a
// single write.
//
// For weekly and biweekly profiles the cycle re-anchors on the missed
// payday: LastPaymentDate rolls forward to the stale NextPaymentDate and the
// step repeats until the result is no longer in the past, so the returned
// date is current no matter how long the profile went unread.
func Refresh(profile *models.IncomeProfile, today time.Time) bool {
	if profile.NextPaymentDate.IsZero() {
		profile.NextPaymentDate = Next(profile, today)
		return true
	}
	if !calendar.BeforeDay(profile.NextPaymentDate, today) {
		return false
	}

	if profile.PaymentFrequency.DayBased() {
		profile.NextPaymentDate = Next(profile, today)
		return true
	}

	step := 7
	if profile.PaymentFrequency == models.PaymentBiweekly {
		step = 14
	}
	last := profile.NextPaymentDate
	next := last.AddDate(0, 0, step)
	for calendar.BeforeDay(next, today) {
		last = next
		next = last.AddDate(0, 0, step)
	}
	profile.LastPaymentDate = &last
	profile.NextPaymentDate = next
	return true
}

// DaysUntil returns the whole days remaining until the next payday, rounding
// partial days up and flooring at zero.
func DaysUntil(nextPayment, today time.Time) int {
	return calendar.DaysUntil(nextPayment, today)
}
