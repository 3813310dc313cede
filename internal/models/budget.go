package models

// Budget is a per-category spending limit. Weekly and yearly budgets are
// stored but only monthly budgets participate in live progress aggregation.
type Budget struct {
	Base
	UserID   string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Category Category     `gorm:"not null" json:"category"`
	Amount   float64      `gorm:"not null" json:"amount"`
	Period   BudgetPeriod `gorm:"not null" json:"period"`
	Currency string       `gorm:"not null" json:"currency"`
}
