package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"moneta/internal/calendar"
	apperrors "moneta/internal/errors"
	"moneta/internal/lock"
	"moneta/internal/logger"
	"moneta/internal/models"
	"moneta/internal/notify"
	"moneta/internal/recurrence"
)

// leaseTTL bounds how long a processing lease can outlive a crashed holder.
const leaseTTL = time.Minute

// errAlreadyAdvanced signals that a concurrent run advanced the template
// between our read and our conditional write; the occurrence is theirs.
var errAlreadyAdvanced = errors.New("template already advanced")

// RecurringProcessor materializes due recurring expenses: one Expense per
// due template per run, advancing the template's due date and deactivating
// it once the end date is exceeded.
type RecurringProcessor struct {
	db        *gorm.DB
	locker    lock.Locker
	publisher notify.Publisher
}

// NewRecurringProcessor creates a new ProcessorServicer.
func NewRecurringProcessor(db *gorm.DB, locker lock.Locker, publisher notify.Publisher) ProcessorServicer {
	return &RecurringProcessor{db: db, locker: locker, publisher: publisher}
}

// ProcessDue materializes every active template of the user whose due date
// has arrived, comparing calendar days only. Each template advances at most
// one step per run, so a long-overdue template catches up over repeated
// runs rather than bursting.
//
// A per-user lease makes concurrent runs mutually exclusive; the expense
// insert and the template advance happen in one database transaction with a
// conditional due-date guard, so neither a crash nor a racing run can
// produce a duplicate occurrence or a half-applied update. A failing
// template is recorded and skipped; the rest of the batch proceeds.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, userID string, now time.Time) (*ProcessResult, error) {
	acquired, err := p.locker.Acquire(ctx, userID, leaseTTL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !acquired {
		return nil, apperrors.ErrProcessingBusy
	}
	defer func() {
		if err := p.locker.Release(ctx, userID); err != nil {
			logger.Get().Warnw("failed to release processing lease", "user_id", userID, "error", err)
		}
	}()

	var items []models.RecurringExpense
	if err := p.db.Where("user_id = ? AND active = ?", userID, true).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ProcessResult{}
	for i := range items {
		item := &items[i]

		due := item.NextDueDate
		if due.IsZero() {
			due = item.StartDate
		}
		if calendar.AfterDay(due, now) {
			continue
		}

		occurrence, err := p.materialize(item, now)
		if errors.Is(err, errAlreadyAdvanced) {
			continue
		}
		if err != nil {
			logger.Get().Errorw("failed to materialize recurring expense",
				"recurring_expense_id", item.ID,
				"description", item.Description,
				"error", err,
			)
			result.Failures = append(result.Failures, ItemFailure{
				RecurringExpenseID: item.ID,
				Error:              err.Error(),
			})
			continue
		}

		result.Occurrences = append(result.Occurrences, *occurrence)
		p.publish(ctx, item, occurrence, now)
	}

	if len(result.Occurrences) > 0 || len(result.Failures) > 0 {
		logger.Get().Infow("processed recurring expenses",
			"user_id", userID,
			"materialized", len(result.Occurrences),
			"failed", len(result.Failures),
		)
	}
	return result, nil
}

// materialize writes the expense and the advanced template state atomically.
func (p *RecurringProcessor) materialize(item *models.RecurringExpense, now time.Time) (*Occurrence, error) {
	nextDue, err := recurrence.NextOccurrence(now, item.Frequency)
	if err != nil {
		return nil, err
	}

	active := item.Active
	if item.EndDate != nil && calendar.AfterDay(nextDue, *item.EndDate) {
		active = false
	}

	expense := &models.Expense{
		UserID:             item.UserID,
		Description:        item.Description,
		Amount:             item.Amount,
		Category:           item.Category,
		Currency:           item.Currency,
		Date:               now,
		RecurringExpenseID: &item.ID,
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		// The due-date guard turns a lost race into a no-op: if another
		// run advanced the template first, zero rows match and the whole
		// transaction, expense included, rolls back.
		res := tx.Model(&models.RecurringExpense{}).
			Where("id = ? AND next_due_date = ?", item.ID, item.NextDueDate).
			Updates(map[string]interface{}{
				"last_processed": now,
				"next_due_date":  nextDue,
				"active":         active,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyAdvanced
		}
		return tx.Create(expense).Error
	})
	if err != nil {
		return nil, err
	}

	processed := now
	item.LastProcessed = &processed
	item.NextDueDate = nextDue
	item.Active = active

	return &Occurrence{
		RecurringExpenseID: item.ID,
		ExpenseID:          expense.ID,
		Description:        item.Description,
		Amount:             item.Amount,
	}, nil
}

// publish sends the occurrence downstream; delivery problems are logged and
// never fail the run, since the ledger writes have already committed.
func (p *RecurringProcessor) publish(ctx context.Context, item *models.RecurringExpense, occurrence *Occurrence, now time.Time) {
	msg := notify.OccurrenceMessage{
		UserID:             item.UserID,
		ExpenseID:          occurrence.ExpenseID,
		RecurringExpenseID: item.ID,
		Description:        item.Description,
		Amount:             item.Amount,
		Currency:           item.Currency,
		Timestamp:          now,
	}
	if err := p.publisher.PublishOccurrence(ctx, msg); err != nil {
		logger.Get().Warnw("failed to publish occurrence",
			"recurring_expense_id", item.ID,
			"expense_id", occurrence.ExpenseID,
			"error", err,
		)
	}
}

// ProcessAll runs ProcessDue for every user that has at least one active
// template. It returns the total number of materialized expenses.
func (p *RecurringProcessor) ProcessAll(ctx context.Context, now time.Time) (int, error) {
	var userIDs []string
	if err := p.db.Model(&models.RecurringExpense{}).
		Where("active = ?", true).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		result, err := p.ProcessDue(ctx, userID, now)
		if err != nil {
			if errors.Is(err, apperrors.ErrProcessingBusy) {
				continue
			}
			logger.Get().Errorw("processing failed for user", "user_id", userID, "error", err)
			continue
		}
		total += len(result.Occurrences)
	}
	return total, nil
}
