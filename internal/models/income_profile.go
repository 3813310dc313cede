package models

import "time"

// IncomeProfile holds a user's income and pay-cycle configuration. There is
// at most one profile per user.
//
// CreditDay is meaningful only for monthly/specific-date frequencies;
// LastPaymentDate only for weekly/biweekly. NextPaymentDate is a cached
// derived value: every read path recomputes and persists it when it has
// fallen behind today, so callers never observe a payday in the past.
type IncomeProfile struct {
	Base
	UserID           string           `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Amount           float64          `gorm:"not null" json:"amount"`
	Currency         string           `gorm:"not null" json:"currency"`
	PaymentFrequency PaymentFrequency `gorm:"not null" json:"payment_frequency"`
	CreditDay        *int             `json:"credit_day,omitempty"`
	LastPaymentDate  *time.Time       `json:"last_payment_date,omitempty"`
	NextPaymentDate  time.Time        `gorm:"not null" json:"next_payment_date"`
}
