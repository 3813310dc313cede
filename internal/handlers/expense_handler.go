package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the request payload for creating an expense.
type CreateExpenseRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=200"`
	Amount      float64         `json:"amount" binding:"required,gt=0"`
	Category    models.Category `json:"category" binding:"required,expense_category"`
	Currency    string          `json:"currency" binding:"required,iso4217"`
	Date        time.Time       `json:"date"`
}

// UpdateExpenseRequest represents the request payload for updating an expense.
type UpdateExpenseRequest struct {
	Description *string          `json:"description" binding:"omitempty,min=1,max=200"`
	Amount      *float64         `json:"amount" binding:"omitempty,gt=0"`
	Category    *models.Category `json:"category" binding:"omitempty,expense_category"`
	Currency    *string          `json:"currency" binding:"omitempty,iso4217"`
	Date        *time.Time       `json:"date"`
}

// CreateExpense handles the creation of a new expense.
// @Summary     Create an expense
// @Description Record a one-off expense for the requesting user
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(
		userID, req.Description, req.Amount, req.Category, req.Currency, req.Date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetExpenses handles listing expenses for the requesting user.
// @Summary     Get expenses
// @Description Get a paginated list of expenses, newest first, with optional date and category filters
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       from      query string false "Earliest date (RFC 3339)"
// @Param       to        query string false "Latest date (RFC 3339)"
// @Param       category  query string false "Filter by category"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.ExpenseFilter
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid from date"))
			return
		}
		filter.FromDate = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid to date"))
			return
		}
		filter.ToDate = &to
	}
	if v := c.Query("category"); v != "" {
		category := models.Category(v)
		if !category.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category"))
			return
		}
		filter.Category = &category
	}

	expenses, err := h.expenseService.GetUserExpenses(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// GetExpenseByID handles fetching a single expense.
// @Summary     Get an expense
// @Description Get a single expense by ID
// @Tags        expenses
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense handles updating an expense.
// @Summary     Update an expense
// @Description Update one or more fields of an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       id path string true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(
		userID, c.Param("id"), req.Description, req.Amount, req.Category, req.Currency, req.Date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles deleting an expense.
// @Summary     Delete an expense
// @Description Delete an expense by ID
// @Tags        expenses
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       id path string true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetExpenseSummary handles retrieving the current month's spending total.
// @Summary     Get monthly spending total
// @Description Sum of the user's expenses from the first of the current month through today
// @Tags        expenses
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Success     200 {object} map[string]interface{} "Monthly total"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/summary [get]
func (h *ExpenseHandler) GetExpenseSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := time.Now()
	total, err := h.expenseService.MonthTotal(userID, now)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"month": now.Format("2006-01"),
	})
}
