package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/payday"
)

// incomeService handles income profiles and payday derivation.
type incomeService struct {
	db *gorm.DB
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB) IncomeServicer {
	return &incomeService{db: db}
}

// GetIncome returns the user's income profile with a guaranteed-current next
// payment date. A stale cached payday is recomputed and persisted in a
// single corrective write before the profile is returned, so no caller ever
// observes a payday in the past.
func (s *incomeService) GetIncome(userID string, now time.Time) (*IncomeStatus, error) {
	var profile models.IncomeProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if payday.Refresh(&profile, now) {
		updates := map[string]interface{}{
			"next_payment_date": profile.NextPaymentDate,
			"last_payment_date": profile.LastPaymentDate,
		}
		if err := s.db.Model(&profile).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return &IncomeStatus{
		Profile:         &profile,
		DaysUntilPayday: payday.DaysUntil(profile.NextPaymentDate, now),
	}, nil
}

// PutIncome creates or replaces the user's income profile and computes its
// next payment date. Weekly and biweekly cycles with no recorded payment
// anchor on today.
func (s *incomeService) PutIncome(
	userID string,
	amount float64,
	currency string,
	frequency models.PaymentFrequency,
	creditDay *int,
	lastPaymentDate *time.Time,
	now time.Time,
) (*models.IncomeProfile, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !frequency.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown payment frequency")
	}
	if creditDay != nil && (*creditDay < 1 || *creditDay > 31) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit day must be between 1 and 31")
	}

	if lastPaymentDate == nil && !frequency.DayBased() {
		anchored := now
		lastPaymentDate = &anchored
	}

	profile := models.IncomeProfile{
		UserID:           userID,
		Amount:           amount,
		Currency:         currency,
		PaymentFrequency: frequency,
		CreditDay:        creditDay,
		LastPaymentDate:  lastPaymentDate,
	}
	profile.NextPaymentDate = payday.Next(&profile, now)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.IncomeProfile
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		switch {
		case err == nil:
			profile.ID = existing.ID
			profile.CreatedAt = existing.CreatedAt
			return tx.Model(&existing).Select(
				"amount", "currency", "payment_frequency",
				"credit_day", "last_payment_date", "next_payment_date",
			).Updates(map[string]interface{}{
				"amount":            profile.Amount,
				"currency":          profile.Currency,
				"payment_frequency": profile.PaymentFrequency,
				"credit_day":        profile.CreditDay,
				"last_payment_date": profile.LastPaymentDate,
				"next_payment_date": profile.NextPaymentDate,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&profile).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &profile, nil
}
