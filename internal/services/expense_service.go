package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"moneta/internal/calendar"
	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records a user-entered expense.
func (s *expenseService) CreateExpense(
	userID, description string,
	amount float64,
	category models.Category,
	currency string,
	date time.Time,
) (*models.Expense, error) {
	if err := validateExpenseFields(description, amount, category); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	expense := &models.Expense{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		Category:    category,
		Currency:    currency,
		Date:        date,
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetUserExpenses returns a paginated list of the user's expenses, newest first.
func (s *expenseService) GetUserExpenses(
	userID string,
	page pagination.PageRequest,
	filter ExpenseFilter,
) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID returns an expense by ID if it belongs to the user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense updates an existing expense's fields.
func (s *expenseService) UpdateExpense(
	userID, expenseID string,
	description *string,
	amount *float64,
	category *models.Category,
	currency *string,
	date *time.Time,
) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if description != nil {
		if *description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must not be empty")
		}
		updates["description"] = *description
	}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *amount
	}
	if category != nil {
		if !category.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category")
		}
		updates["category"] = *category
	}
	if currency != nil {
		updates["currency"] = *currency
	}
	if date != nil {
		updates["date"] = *date
	}

	if len(updates) > 0 {
		if err := s.db.Model(expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return expense, nil
}

// MonthTotal sums the user's expenses from the first of the current month
// through now. Amounts are summed regardless of currency.
func (s *expenseService) MonthTotal(userID string, now time.Time) (float64, error) {
	var total float64
	err := s.db.Model(&models.Expense{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, calendar.StartOfMonth(now), now).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// DeleteExpense soft-deletes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// validateExpenseFields rejects invalid expense data before any persistence.
func validateExpenseFields(description string, amount float64, category models.Category) error {
	if description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must not be empty")
	}
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !category.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category")
	}
	return nil
}
