package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/services"
)

// IncomeHandler handles income profile requests.
type IncomeHandler struct {
	incomeService services.IncomeServicer
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(incomeService services.IncomeServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// PutIncomeRequest represents the request payload for setting the income
// profile. CreditDay applies to monthly and specific-date frequencies;
// LastPaymentDate anchors weekly and biweekly cycles.
type PutIncomeRequest struct {
	Amount           float64                 `json:"amount" binding:"required,gt=0"`
	Currency         string                  `json:"currency" binding:"required,iso4217"`
	PaymentFrequency models.PaymentFrequency `json:"payment_frequency" binding:"required,payment_frequency"`
	CreditDay        *int                    `json:"credit_day" binding:"omitempty,min=1,max=31"`
	LastPaymentDate  *time.Time              `json:"last_payment_date"`
}

// GetIncome handles fetching the requesting user's income profile.
// @Summary     Get income profile
// @Description Get the income profile with a current next payment date and a day countdown
// @Tags        income
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Success     200 {object} services.IncomeStatus "Income profile and payday countdown"
// @Failure     404 {object} ErrorResponse "Income profile not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income [get]
func (h *IncomeHandler) GetIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.incomeService.GetIncome(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// PutIncome handles creating or replacing the requesting user's income profile.
// @Summary     Set income profile
// @Description Create or replace the income profile and compute its next payment date
// @Tags        income
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "User ID"
// @Param       request body PutIncomeRequest true "Income details"
// @Success     200 {object} models.IncomeProfile "Income profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income [put]
func (h *IncomeHandler) PutIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PutIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	profile, err := h.incomeService.PutIncome(
		userID, req.Amount, req.Currency, req.PaymentFrequency,
		req.CreditDay, req.LastPaymentDate, time.Now(),
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income_profile": profile})
}
