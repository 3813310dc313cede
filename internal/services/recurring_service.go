package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"moneta/internal/calendar"
	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/recurrence"
)

// recurringService handles recurring expense template CRUD. Materialization
// of due templates lives in RecurringProcessor.
type recurringService struct {
	db *gorm.DB
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

// CreateRecurringExpense creates a template whose first due date is one
// frequency step after the start date.
func (s *recurringService) CreateRecurringExpense(
	userID, description string,
	amount float64,
	category models.Category,
	currency string,
	frequency models.Frequency,
	startDate time.Time,
	endDate *time.Time,
) (*models.RecurringExpense, error) {
	if err := validateExpenseFields(description, amount, category); err != nil {
		return nil, err
	}
	if endDate != nil && calendar.BeforeDay(*endDate, startDate) {
		return nil, apperrors.ErrEndBeforeStart
	}

	nextDue, err := recurrence.NextOccurrence(startDate, frequency)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	item := &models.RecurringExpense{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		Category:    category,
		Currency:    currency,
		Frequency:   frequency,
		StartDate:   startDate,
		EndDate:     endDate,
		Active:      true,
		NextDueDate: nextDue,
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// GetUserRecurringExpenses returns a paginated list of the user's templates.
func (s *recurringService) GetUserRecurringExpenses(
	userID string,
	page pagination.PageRequest,
	activeOnly bool,
) (*pagination.PageResponse[models.RecurringExpense], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringExpense{}).Where("user_id = ?", userID)
	if activeOnly {
		base = base.Where("active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []models.RecurringExpense
	if err := base.Scopes(pagination.Paginate(page)).Order("next_due_date ASC").Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRecurringExpenseByID returns a template by ID if it belongs to the user.
func (s *recurringService) GetRecurringExpenseByID(userID, recurringID string) (*models.RecurringExpense, error) {
	var item models.RecurringExpense
	if err := s.db.Where("id = ? AND user_id = ?", recurringID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// UpdateRecurringExpense updates a template. When the frequency or start
// date changes, the next due date is recomputed from the new values; the
// previous processing history does not shift it.
func (s *recurringService) UpdateRecurringExpense(
	userID, recurringID string,
	update RecurringUpdate,
) (*models.RecurringExpense, error) {
	item, err := s.GetRecurringExpenseByID(userID, recurringID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Description != nil {
		if *update.Description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must not be empty")
		}
		updates["description"] = *update.Description
	}
	if update.Amount != nil {
		if *update.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *update.Amount
	}
	if update.Category != nil {
		if !update.Category.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category")
		}
		updates["category"] = *update.Category
	}
	if update.Currency != nil {
		updates["currency"] = *update.Currency
	}
	if update.Active != nil {
		updates["active"] = *update.Active
	}

	frequency := item.Frequency
	if update.Frequency != nil {
		if !update.Frequency.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown frequency")
		}
		frequency = *update.Frequency
		updates["frequency"] = frequency
	}
	startDate := item.StartDate
	if update.StartDate != nil {
		startDate = *update.StartDate
		updates["start_date"] = startDate
	}
	endDate := item.EndDate
	switch {
	case update.ClearEndDate:
		if update.EndDate != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot set and clear the end date in one update")
		}
		endDate = nil
		updates["end_date"] = nil
	case update.EndDate != nil:
		endDate = update.EndDate
		updates["end_date"] = endDate
	}
	if endDate != nil && calendar.BeforeDay(*endDate, startDate) {
		return nil, apperrors.ErrEndBeforeStart
	}

	if update.Frequency != nil || update.StartDate != nil {
		nextDue, err := recurrence.NextOccurrence(startDate, frequency)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		updates["next_due_date"] = nextDue
	}

	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return item, nil
}

// DeleteRecurringExpense soft-deletes a template. Expenses already
// materialized from it are left untouched.
func (s *recurringService) DeleteRecurringExpense(userID, recurringID string) error {
	item, err := s.GetRecurringExpenseByID(userID, recurringID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
