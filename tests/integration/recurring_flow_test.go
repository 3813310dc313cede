package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestRecurringFlow_CreateProcessAndTrace(t *testing.T) {
	app := setupApp(t)
	userID := newUserID()

	// Step 1: Create a daily template that started yesterday, so its first
	// occurrence is due today.
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC3339)
	rec := app.request("POST", "/api/v1/recurring-expenses",
		fmt.Sprintf(`{"description":"Coffee subscription","amount":3.5,"category":"Food","currency":"USD","frequency":"daily","start_date":%q}`, yesterday),
		userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := parseJSON(t, rec)["recurring_expense"].(map[string]interface{})
	templateID := created["id"].(string)
	if created["active"] != true {
		t.Error("expected new template to be active")
	}

	// Step 2: Process due templates.
	rec = app.request("POST", "/api/v1/recurring-expenses/process", "", userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	occurrences, ok := result["occurrences"].([]interface{})
	if !ok || len(occurrences) != 1 {
		t.Fatalf("expected 1 occurrence, got %v", result["occurrences"])
	}

	// Step 3: The materialized expense appears in the ledger and references
	// its template.
	rec = app.request("GET", "/api/v1/expenses", "", userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	list := parseJSON(t, rec)
	if list["total_items"].(float64) != 1 {
		t.Fatalf("expected 1 expense, got %v", list["total_items"])
	}
	expense := list["data"].([]interface{})[0].(map[string]interface{})
	if expense["recurring_expense_id"] != templateID {
		t.Errorf("expected expense to reference template %s, got %v", templateID, expense["recurring_expense_id"])
	}
	if expense["description"] != "Coffee subscription" {
		t.Errorf("expected template description copied, got %v", expense["description"])
	}

	// Step 4: Processing again the same day produces nothing new.
	rec = app.request("POST", "/api/v1/recurring-expenses/process", "", userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	if occ, ok := result["occurrences"].([]interface{}); ok && len(occ) != 0 {
		t.Errorf("expected no occurrences on second run, got %d", len(occ))
	}

	// Step 5: The template shows the advanced due date.
	rec = app.request("GET", "/api/v1/recurring-expenses/"+templateID, "", userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	template := parseJSON(t, rec)["recurring_expense"].(map[string]interface{})
	if template["last_processed"] == nil {
		t.Error("expected last_processed to be set after processing")
	}
}

func TestRecurringFlow_EditRecomputesDueDate(t *testing.T) {
	app := setupApp(t)
	userID := newUserID()

	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	rec := app.request("POST", "/api/v1/recurring-expenses",
		fmt.Sprintf(`{"description":"Hosting","amount":12,"category":"Utilities","currency":"EUR","frequency":"monthly","start_date":%q}`, start.Format(time.RFC3339)),
		userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	templateID := parseJSON(t, rec)["recurring_expense"].(map[string]interface{})["id"].(string)

	rec = app.request("PUT", "/api/v1/recurring-expenses/"+templateID,
		`{"frequency":"weekly"}`, userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/recurring-expenses/"+templateID, "", userID)
	template := parseJSON(t, rec)["recurring_expense"].(map[string]interface{})
	nextDue, err := time.Parse(time.RFC3339, template["next_due_date"].(string))
	if err != nil {
		t.Fatalf("failed to parse next_due_date: %v", err)
	}
	want := start.AddDate(0, 0, 7)
	if !nextDue.Equal(want) {
		t.Errorf("expected due date recomputed to %v, got %v", want, nextDue)
	}
}

func TestRecurringFlow_UserIsolation(t *testing.T) {
	app := setupApp(t)
	owner := newUserID()
	stranger := newUserID()

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC3339)
	rec := app.request("POST", "/api/v1/recurring-expenses",
		fmt.Sprintf(`{"description":"Rent","amount":900,"category":"Housing","currency":"USD","frequency":"monthly","start_date":%q}`, yesterday),
		owner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	templateID := parseJSON(t, rec)["recurring_expense"].(map[string]interface{})["id"].(string)

	rec = app.request("GET", "/api/v1/recurring-expenses/"+templateID, "", stranger)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's template, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/recurring-expenses", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without X-User-ID header, got %d", rec.Code)
	}
}
