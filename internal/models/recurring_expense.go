package models

import "time"

// RecurringExpense is the template for a repeating expense. The processor
// materializes one Expense per due occurrence and advances NextDueDate.
//
// NextDueDate is always derivable from (LastProcessed ?? StartDate) plus one
// frequency step. Once Active is false the template never generates further
// expenses.
type RecurringExpense struct {
	Base
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Description string     `gorm:"not null" json:"description"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Category    Category   `gorm:"not null" json:"category"`
	Currency    string     `gorm:"not null" json:"currency"`
	Frequency   Frequency  `gorm:"not null" json:"frequency"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Active      bool       `gorm:"not null;default:true;index" json:"active"`

	LastProcessed *time.Time `json:"last_processed,omitempty"`
	NextDueDate   time.Time  `gorm:"not null" json:"next_due_date"`
}
