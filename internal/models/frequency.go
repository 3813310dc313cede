package models

// Frequency represents how often a recurring expense repeats.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyYearly   Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// PaymentFrequency represents how often a user's income is paid out.
type PaymentFrequency string

const (
	PaymentMonthly      PaymentFrequency = "monthly"
	PaymentSpecificDate PaymentFrequency = "specific-date"
	PaymentBiweekly     PaymentFrequency = "biweekly"
	PaymentWeekly       PaymentFrequency = "weekly"
)

// Valid reports whether p is a known payment frequency.
func (p PaymentFrequency) Valid() bool {
	switch p {
	case PaymentMonthly, PaymentSpecificDate, PaymentBiweekly, PaymentWeekly:
		return true
	}
	return false
}

// DayBased reports whether the frequency anchors on a calendar day of month
// (credit day) rather than on the previous payment date.
func (p PaymentFrequency) DayBased() bool {
	return p == PaymentMonthly || p == PaymentSpecificDate
}

// BudgetPeriod represents the period type for a budget.
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether b is a known budget period.
func (b BudgetPeriod) Valid() bool {
	switch b {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}
