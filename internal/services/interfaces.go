package services

import (
	"context"
	"time"

	"moneta/internal/models"
	"moneta/internal/pagination"
)

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Category *models.Category
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID, description string, amount float64, category models.Category, currency string, date time.Time) (*models.Expense, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, description *string, amount *float64, category *models.Category, currency *string, date *time.Time) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	MonthTotal(userID string, now time.Time) (float64, error)
}

// RecurringUpdate holds the optional fields of a recurring expense edit.
// Changing Frequency or StartDate recomputes the template's next due date
// from the new values. ClearEndDate removes an existing end date, reopening
// the template; it cannot be combined with EndDate.
type RecurringUpdate struct {
	Description  *string
	Amount       *float64
	Category     *models.Category
	Currency     *string
	Frequency    *models.Frequency
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	Active       *bool
}

// RecurringServicer defines the contract for recurring expense templates.
type RecurringServicer interface {
	CreateRecurringExpense(userID, description string, amount float64, category models.Category, currency string, frequency models.Frequency, startDate time.Time, endDate *time.Time) (*models.RecurringExpense, error)
	GetUserRecurringExpenses(userID string, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.RecurringExpense], error)
	GetRecurringExpenseByID(userID, recurringID string) (*models.RecurringExpense, error)
	UpdateRecurringExpense(userID, recurringID string, update RecurringUpdate) (*models.RecurringExpense, error)
	DeleteRecurringExpense(userID, recurringID string) error
}

// IncomeStatus is an income profile together with its derived payday figures.
type IncomeStatus struct {
	Profile         *models.IncomeProfile `json:"profile"`
	DaysUntilPayday int                   `json:"days_until_payday"`
}

// IncomeServicer defines the contract for income profile logic. Reads are
// self-healing: a stale cached payday is recomputed and persisted before the
// profile is returned.
type IncomeServicer interface {
	GetIncome(userID string, now time.Time) (*IncomeStatus, error)
	PutIncome(userID string, amount float64, currency string, frequency models.PaymentFrequency, creditDay *int, lastPaymentDate *time.Time, now time.Time) (*models.IncomeProfile, error)
}

// AlertTier classifies budget consumption for alerting.
type AlertTier string

const (
	TierOK               AlertTier = "ok"
	TierApproachingLimit AlertTier = "approaching_limit"
	TierLimitReached     AlertTier = "limit_reached"
)

// CategoryProgress reports spending against one monthly budget.
// Percentage is capped at 100 for progress displays; AlertPercentage is the
// uncapped value and is the one Tier is derived from.
type CategoryProgress struct {
	Category        models.Category `json:"category"`
	BudgetAmount    float64         `json:"budget_amount"`
	SpentAmount     float64         `json:"spent_amount"`
	Percentage      float64         `json:"percentage"`
	AlertPercentage float64         `json:"alert_percentage"`
	Tier            AlertTier       `json:"tier"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, category models.Category, amount float64, period models.BudgetPeriod, currency string) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, category *models.Category, amount *float64, period *models.BudgetPeriod, currency *string) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	MonthlyProgress(userID string, now time.Time) ([]CategoryProgress, error)
}

// Occurrence records one expense materialized from a recurring template.
type Occurrence struct {
	RecurringExpenseID string  `json:"recurring_expense_id"`
	ExpenseID          string  `json:"expense_id"`
	Description        string  `json:"description"`
	Amount             float64 `json:"amount"`
}

// ItemFailure records a template whose materialization failed; the rest of
// the batch is unaffected.
type ItemFailure struct {
	RecurringExpenseID string `json:"recurring_expense_id"`
	Error              string `json:"error"`
}

// ProcessResult is the outcome of one processing run for one user.
type ProcessResult struct {
	Occurrences []Occurrence  `json:"occurrences"`
	Failures    []ItemFailure `json:"failures"`
}

// ProcessorServicer materializes due recurring expenses.
type ProcessorServicer interface {
	ProcessDue(ctx context.Context, userID string, now time.Time) (*ProcessResult, error)
	ProcessAll(ctx context.Context, now time.Time) (int, error)
}
