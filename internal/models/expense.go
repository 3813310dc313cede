package models

import "time"

// Expense represents a single materialized expense, either entered directly
// by the user or generated from a recurring template. The amount is a decimal
// in the expense's own currency; no conversion is ever applied.
type Expense struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Description string    `gorm:"not null" json:"description"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Category    Category  `gorm:"not null" json:"category"`
	Currency    string    `gorm:"not null" json:"currency"`
	Date        time.Time `gorm:"not null;index" json:"date"`

	// Set when the expense was materialized from a recurring template,
	// so occurrences can be traced back to their origin.
	RecurringExpenseID *string `gorm:"type:uuid;index" json:"recurring_expense_id,omitempty"`
}
