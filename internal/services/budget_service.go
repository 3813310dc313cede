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

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget for a category.
func (s *budgetService) CreateBudget(
	userID string,
	category models.Category,
	amount float64,
	period models.BudgetPeriod,
	currency string,
) (*models.Budget, error) {
	if !category.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !period.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget period")
	}

	budget := &models.Budget{
		UserID:   userID,
		Category: category,
		Amount:   amount,
		Period:   period,
		Currency: currency,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetUserBudgets returns a paginated list of the user's budgets.
func (s *budgetService) GetUserBudgets(
	userID string,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(
	userID, budgetID string,
	category *models.Category,
	amount *float64,
	period *models.BudgetPeriod,
	currency *string,
) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if category != nil {
		if !category.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category")
		}
		updates["category"] = *category
	}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *amount
	}
	if period != nil {
		if !period.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget period")
		}
		updates["period"] = *period
	}
	if currency != nil {
		updates["currency"] = *currency
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MonthlyProgress reports spending against each monthly budget for the month
// containing now. Amounts are summed per category regardless of currency;
// categories that mix currencies mix them here too, which callers must treat
// as a known limitation rather than a conversion.
//
// Percentage is capped at 100 for progress bars. The tier comes from the
// uncapped AlertPercentage, so an over-spent category still alerts correctly.
func (s *budgetService) MonthlyProgress(userID string, now time.Time) ([]CategoryProgress, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND period = ?", userID, models.BudgetPeriodMonthly).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(budgets) == 0 {
		return []CategoryProgress{}, nil
	}

	var expenses []models.Expense
	if err := s.db.Where("user_id = ? AND date >= ? AND date <= ?",
		userID, calendar.StartOfMonth(now), now).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spentByCategory := make(map[models.Category]float64)
	for _, e := range expenses {
		spentByCategory[e.Category] += e.Amount
	}

	progress := make([]CategoryProgress, 0, len(budgets))
	for _, budget := range budgets {
		spent := spentByCategory[budget.Category]

		var alertPct float64
		if budget.Amount > 0 {
			alertPct = spent / budget.Amount * 100
		}
		displayPct := alertPct
		if displayPct > 100 {
			displayPct = 100
		}

		progress = append(progress, CategoryProgress{
			Category:        budget.Category,
			BudgetAmount:    budget.Amount,
			SpentAmount:     spent,
			Percentage:      displayPct,
			AlertPercentage: alertPct,
			Tier:            tierFor(alertPct),
		})
	}
	return progress, nil
}

// tierFor classifies uncapped budget consumption into alert tiers.
func tierFor(alertPct float64) AlertTier {
	switch {
	case alertPct >= 90:
		return TierLimitReached
	case alertPct >= 70:
		return TierApproachingLimit
	default:
		return TierOK
	}
}
