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

// RecurringHandler handles recurring expense template requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	processor        services.ProcessorServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, processor services.ProcessorServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, processor: processor}
}

// CreateRecurringRequest represents the request payload for creating a
// recurring expense template.
type CreateRecurringRequest struct {
	Description string           `json:"description" binding:"required,min=1,max=200"`
	Amount      float64          `json:"amount" binding:"required,gt=0"`
	Category    models.Category  `json:"category" binding:"required,expense_category"`
	Currency    string           `json:"currency" binding:"required,iso4217"`
	Frequency   models.Frequency `json:"frequency" binding:"required,frequency"`
	StartDate   time.Time        `json:"start_date" binding:"required"`
	EndDate     *time.Time       `json:"end_date"`
}

// UpdateRecurringRequest represents the request payload for updating a
// recurring expense template.
type UpdateRecurringRequest struct {
	Description  *string           `json:"description" binding:"omitempty,min=1,max=200"`
	Amount       *float64          `json:"amount" binding:"omitempty,gt=0"`
	Category     *models.Category  `json:"category" binding:"omitempty,expense_category"`
	Currency     *string           `json:"currency" binding:"omitempty,iso4217"`
	Frequency    *models.Frequency `json:"frequency" binding:"omitempty,frequency"`
	StartDate    *time.Time        `json:"start_date"`
	EndDate      *time.Time        `json:"end_date"`
	ClearEndDate bool              `json:"clear_end_date"`
	Active       *bool             `json:"active"`
}

// CreateRecurringExpense handles the creation of a recurring expense template.
// @Summary     Create a recurring expense
// @Description Create a template that materializes an expense on a recurring schedule
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       request body CreateRecurringRequest true "Template details"
// @Success     201 {object} models.RecurringExpense "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses [post]
func (h *RecurringHandler) CreateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.recurringService.CreateRecurringExpense(
		userID, req.Description, req.Amount, req.Category, req.Currency,
		req.Frequency, req.StartDate, req.EndDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_expense": item})
}

// GetRecurringExpenses handles listing recurring expense templates.
// @Summary     Get recurring expenses
// @Description Get a paginated list of recurring expense templates, soonest due first
// @Tags        recurring-expenses
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       active    query bool false "Only active templates"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.RecurringExpense] "Paginated templates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses [get]
func (h *RecurringHandler) GetRecurringExpenses(c *gin.Context) {
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

	activeOnly := c.Query("active") == "true"

	items, err := h.recurringService.GetUserRecurringExpenses(userID, page, activeOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetRecurringExpenseByID handles fetching a single template.
// @Summary     Get a recurring expense
// @Description Get a single recurring expense template by ID
// @Tags        recurring-expenses
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       id path string true "Template ID"
// @Success     200 {object} models.RecurringExpense "Template"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses/{id} [get]
func (h *RecurringHandler) GetRecurringExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.recurringService.GetRecurringExpenseByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expense": item})
}

// UpdateRecurringExpense handles updating a template.
// @Summary     Update a recurring expense
// @Description Update a template; changing the frequency or start date recomputes its next due date
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       id path string true "Template ID"
// @Param       request body UpdateRecurringRequest true "Fields to update"
// @Success     200 {object} models.RecurringExpense "Updated template"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses/{id} [put]
func (h *RecurringHandler) UpdateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.recurringService.UpdateRecurringExpense(userID, c.Param("id"), services.RecurringUpdate{
		Description:  req.Description,
		Amount:       req.Amount,
		Category:     req.Category,
		Currency:     req.Currency,
		Frequency:    req.Frequency,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ClearEndDate: req.ClearEndDate,
		Active:       req.Active,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expense": item})
}

// DeleteRecurringExpense handles deleting a template.
// @Summary     Delete a recurring expense
// @Description Delete a template; expenses already materialized from it are kept
// @Tags        recurring-expenses
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       id path string true "Template ID"
// @Success     204 "Template deleted"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses/{id} [delete]
func (h *RecurringHandler) DeleteRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurringExpense(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ProcessRecurringExpenses handles an explicit processing run for the
// requesting user.
// @Summary     Process due recurring expenses
// @Description Materialize every due template of the requesting user into expenses
// @Tags        recurring-expenses
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Success     200 {object} services.ProcessResult "Processing outcome"
// @Failure     409 {object} ErrorResponse "Processing already in progress"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses/process [post]
func (h *RecurringHandler) ProcessRecurringExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.processor.ProcessDue(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
