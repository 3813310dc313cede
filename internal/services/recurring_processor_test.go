package services

import (
	"context"
	"testing"
	"time"

	"moneta/internal/calendar"
	"moneta/internal/lock"
	"moneta/internal/models"
	"moneta/internal/notify"
	"moneta/internal/testutil"
)

func TestProcessDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	t.Run("materializes_due_template", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		proc := NewRecurringProcessor(db, lock.NewMemoryLocker(), notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		start := now.AddDate(0, -1, 0)
		item := testutil.CreateTestRecurringExpense(t, db, userID, models.FrequencyMonthly, start, calendar.StartOfDay(now))

		result, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)

		if len(result.Occurrences) != 1 {
			t.Fatalf("expected 1 occurrence, got %d", len(result.Occurrences))
		}
		if len(result.Failures) != 0 {
			t.Fatalf("expected no failures, got %d", len(result.Failures))
		}

		var expense models.Expense
		if err := db.Where("recurring_expense_id = ?", item.ID).First(&expense).Error; err != nil {
			t.Fatalf("expected a materialized expense: %v", err)
		}
		if expense.Amount != item.Amount || expense.Category != item.Category {
			t.Error("materialized expense should copy the template's fields")
		}

		var reloaded models.RecurringExpense
		if err := db.First(&reloaded, "id = ?", item.ID).Error; err != nil {
			t.Fatalf("failed to reload template: %v", err)
		}
		wantDue := time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC)
		if !calendar.SameDay(reloaded.NextDueDate, wantDue) {
			t.Errorf("expected due date advanced to %v, got %v", wantDue, reloaded.NextDueDate)
		}
		if reloaded.LastProcessed == nil || !calendar.SameDay(*reloaded.LastProcessed, now) {
			t.Error("expected last processed set to today")
		}
	})

	t.Run("second_run_same_day_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		proc := NewRecurringProcessor(db, lock.NewMemoryLocker(), notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		testutil.CreateTestRecurringExpense(t, db, userID, models.FrequencyDaily, now.AddDate(0, 0, -1), calendar.StartOfDay(now))

		first, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)
		if len(first.Occurrences) != 1 {
			t.Fatalf("expected 1 occurrence on first run, got %d", len(first.Occurrences))
		}

		second, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)
		if len(second.Occurrences) != 0 {
			t.Errorf("expected no occurrences on second run, got %d", len(second.Occurrences))
		}

		var count int64
		if err := db.Model(&models.Expense{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count expenses: %v", err)
		}
		if count != 1 {
			t.Errorf("expected exactly 1 expense, got %d", count)
		}
	})

	t.Run("future_template_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		proc := NewRecurringProcessor(db, lock.NewMemoryLocker(), notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		testutil.CreateTestRecurringExpense(t, db, userID, models.FrequencyWeekly, now, now.AddDate(0, 0, 3))

		result, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)
		if len(result.Occurrences) != 0 {
			t.Errorf("expected no occurrences for a future template, got %d", len(result.Occurrences))
		}
	})

	t.Run("overdue_advances_one_step_per_run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		proc := NewRecurringProcessor(db, lock.NewMemoryLocker(), notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		longOverdue := now.AddDate(0, -3, 0)
		testutil.CreateTestRecurringExpense(t, db, userID, models.FrequencyDaily, longOverdue, longOverdue)

		result, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)
		if len(result.Occurrences) != 1 {
			t.Fatalf("overdue template should yield a single occurrence per run, got %d", len(result.Occurrences))
		}

		var reloaded models.RecurringExpense
		if err := db.First(&reloaded, "user_id = ?", userID).Error; err != nil {
			t.Fatalf("failed to reload template: %v", err)
		}
		if !calendar.SameDay(reloaded.NextDueDate, now.AddDate(0, 0, 1)) {
			t.Errorf("due date should step from today, got %v", reloaded.NextDueDate)
		}
	})

	t.Run("deactivates_past_end_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		proc := NewRecurringProcessor(db, lock.NewMemoryLocker(), notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		item := testutil.CreateTestRecurringExpense(t, db, userID, models.FrequencyWeekly, now.AddDate(0, 0, -7), calendar.StartOfDay(now))
		end := now.AddDate(0, 0, 3)
		if err := db.Model(item).Update("end_date", &end).Error; err != nil {
			t.Fatalf("failed to set end date: %v", err)
		}

		result, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)
		if len(result.Occurrences) != 1 {
			t.Fatalf("final occurrence should still materialize, got %d", len(result.Occurrences))
		}

		var reloaded models.RecurringExpense
		if err := db.First(&reloaded, "id = ?", item.ID).Error; err != nil {
			t.Fatalf("failed to reload template: %v", err)
		}
		if reloaded.Active {
			t.Error("template should deactivate once the next step passes its end date")
		}
	})

	t.Run("inactive_template_ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		proc := NewRecurringProcessor(db, lock.NewMemoryLocker(), notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		item := testutil.CreateTestRecurringExpense(t, db, userID, models.FrequencyDaily, now.AddDate(0, 0, -2), calendar.StartOfDay(now))
		if err := db.Model(item).Update("active", false).Error; err != nil {
			t.Fatalf("failed to deactivate template: %v", err)
		}

		result, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)
		if len(result.Occurrences) != 0 {
			t.Errorf("inactive templates must not materialize, got %d occurrences", len(result.Occurrences))
		}
	})

	t.Run("failed_insert_rolls_back_and_batch_continues", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		proc := NewRecurringProcessor(db, lock.NewMemoryLocker(), notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		due := calendar.StartOfDay(now)
		first := testutil.CreateTestRecurringExpense(t, db, userID, models.FrequencyDaily, now.AddDate(0, 0, -1), due)
		second := testutil.CreateTestRecurringExpense(t, db, userID, models.FrequencyWeekly, now.AddDate(0, 0, -7), due)

		// With the expenses table gone every insert fails, so the run must
		// record one failure per template instead of stopping at the first.
		if err := db.Migrator().DropTable(&models.Expense{}); err != nil {
			t.Fatalf("failed to drop expenses table: %v", err)
		}

		result, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)

		if len(result.Occurrences) != 0 {
			t.Errorf("expected no occurrences, got %d", len(result.Occurrences))
		}
		if len(result.Failures) != 2 {
			t.Fatalf("expected a failure per due template, got %d", len(result.Failures))
		}
		failed := map[string]bool{}
		for _, f := range result.Failures {
			if f.Error == "" {
				t.Error("failure should carry the underlying error text")
			}
			failed[f.RecurringExpenseID] = true
		}
		if !failed[first.ID] || !failed[second.ID] {
			t.Error("failures should reference the templates that could not materialize")
		}

		// The template advance shares the expense insert's transaction, so a
		// failed insert leaves the template exactly as it was.
		for _, id := range []string{first.ID, second.ID} {
			var reloaded models.RecurringExpense
			if err := db.First(&reloaded, "id = ?", id).Error; err != nil {
				t.Fatalf("failed to reload template: %v", err)
			}
			if !calendar.SameDay(reloaded.NextDueDate, due) {
				t.Errorf("due date must not advance on failure, got %v", reloaded.NextDueDate)
			}
			if reloaded.LastProcessed != nil {
				t.Error("last processed must stay unset on failure")
			}
			if !reloaded.Active {
				t.Error("template must stay active on failure")
			}
		}
	})

	t.Run("held_lease_rejects_run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		locker := lock.NewMemoryLocker()
		proc := NewRecurringProcessor(db, locker, notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		held, err := locker.Acquire(ctx, userID, time.Minute)
		testutil.AssertNoError(t, err)
		if !held {
			t.Fatal("expected to take the lease")
		}

		_, err = proc.ProcessDue(ctx, userID, now)
		testutil.AssertAppError(t, err, "PROCESSING_IN_PROGRESS")
	})

	t.Run("lease_released_after_run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		locker := lock.NewMemoryLocker()
		proc := NewRecurringProcessor(db, locker, notify.NopPublisher{})
		userID := testutil.NewTestUserID()

		_, err := proc.ProcessDue(ctx, userID, now)
		testutil.AssertNoError(t, err)

		held, err := locker.Acquire(ctx, userID, time.Minute)
		testutil.AssertNoError(t, err)
		if !held {
			t.Error("lease should be free again after the run")
		}
	})
}

func TestProcessAll(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	proc := NewRecurringProcessor(db, lock.NewMemoryLocker(), notify.NopPublisher{})

	userA := testutil.NewTestUserID()
	userB := testutil.NewTestUserID()
	userC := testutil.NewTestUserID()

	testutil.CreateTestRecurringExpense(t, db, userA, models.FrequencyDaily, now.AddDate(0, 0, -1), calendar.StartOfDay(now))
	testutil.CreateTestRecurringExpense(t, db, userA, models.FrequencyWeekly, now.AddDate(0, 0, -7), calendar.StartOfDay(now))
	testutil.CreateTestRecurringExpense(t, db, userB, models.FrequencyMonthly, now.AddDate(0, -1, 0), calendar.StartOfDay(now))

	// userC has only a future template, so nothing materializes for them.
	testutil.CreateTestRecurringExpense(t, db, userC, models.FrequencyWeekly, now, now.AddDate(0, 0, 5))

	total, err := proc.ProcessAll(ctx, now)
	testutil.AssertNoError(t, err)

	if total != 3 {
		t.Errorf("expected 3 materialized expenses across users, got %d", total)
	}

	var count int64
	if err := db.Model(&models.Expense{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count expenses: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 expenses in the ledger, got %d", count)
	}
}
