package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneta/internal/models"
	"moneta/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewTestUserID returns a fresh user identifier for scoping fixtures.
func NewTestUserID() string {
	return uuid.New()
}

// CreateTestExpense creates an expense for the given user and category.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, category models.Category, amount float64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      userID,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Amount:      amount,
		Category:    category,
		Currency:    "USD",
		Date:        date,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestRecurringExpense creates an active recurring expense whose next
// due date is already computed from the start date and frequency.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, userID string, frequency models.Frequency, startDate, nextDueDate time.Time) *models.RecurringExpense {
	t.Helper()

	recurring := &models.RecurringExpense{
		UserID:      userID,
		Description: fmt.Sprintf("Test Recurring %d", nextID()),
		Amount:      25.00,
		Category:    models.CategoryUtilities,
		Currency:    "USD",
		Frequency:   frequency,
		StartDate:   startDate,
		Active:      true,
		NextDueDate: nextDueDate,
	}
	if err := db.Create(recurring).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return recurring
}

// CreateTestBudget creates a monthly budget for the given category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, category models.Category, amount float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:   userID,
		Category: category,
		Amount:   amount,
		Period:   models.BudgetPeriodMonthly,
		Currency: "USD",
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestIncomeProfile creates an income profile with the given payment
// frequency. Anchor dates are left to the caller to set when relevant.
func CreateTestIncomeProfile(t *testing.T, db *gorm.DB, userID string, frequency models.PaymentFrequency, nextPayment time.Time) *models.IncomeProfile {
	t.Helper()

	profile := &models.IncomeProfile{
		UserID:           userID,
		Amount:           3000.00,
		Currency:         "USD",
		PaymentFrequency: frequency,
		NextPaymentDate:  nextPayment,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test income profile: %v", err)
	}
	return profile
}
