package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
	"moneta/internal/validator"
)

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn   func(userID, description string, amount float64, category models.Category, currency string, date time.Time) (*models.Expense, error)
	getUserExpensesFn func(userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	getExpenseByIDFn  func(userID, expenseID string) (*models.Expense, error)
	updateExpenseFn   func(userID, expenseID string, description *string, amount *float64, category *models.Category, currency *string, date *time.Time) (*models.Expense, error)
	deleteExpenseFn   func(userID, expenseID string) error
	monthTotalFn      func(userID string, now time.Time) (float64, error)
}

func (m *mockExpenseService) CreateExpense(userID, description string, amount float64, category models.Category, currency string, date time.Time) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, description, amount, category, currency, date)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.getUserExpensesFn != nil {
		return m.getUserExpensesFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(userID, expenseID string, description *string, amount *float64, category *models.Category, currency *string, date *time.Time) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, description, amount, category, currency, date)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) MonthTotal(userID string, now time.Time) (float64, error) {
	if m.monthTotalFn != nil {
		return m.monthTotalFn(userID, now)
	}
	return 0, nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

// --- test helpers ---

const testUserID = "3f1c6a52-84cf-4a9b-9d8e-1f2a3b4c5d6e"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/expenses", handler.CreateExpense)
	auth.GET("/expenses", handler.GetExpenses)
	auth.GET("/expenses/:id", handler.GetExpenseByID)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

// --- tests ---

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(userID, description string, amount float64, category models.Category, currency string, _ time.Time) (*models.Expense, error) {
				return &models.Expense{
					Base:        models.Base{ID: "exp-1"},
					UserID:      userID,
					Description: description,
					Amount:      amount,
					Category:    category,
					Currency:    currency,
				}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "POST", "/expenses",
			`{"description":"Lunch","amount":12.5,"category":"Food","currency":"USD"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		expense := result["expense"].(map[string]interface{})
		if expense["description"] != "Lunch" {
			t.Errorf("expected description Lunch, got %v", expense["description"])
		}
		if expense["user_id"] != testUserID {
			t.Errorf("expected scoped user ID, got %v", expense["user_id"])
		}
	})

	t.Run("returns 400 on unknown category", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"description":"Lunch","amount":12.5,"category":"gadgets","currency":"USD"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid currency", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"description":"Lunch","amount":12.5,"category":"Food","currency":"DOLLARS"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestExpenseHandler_GetExpenses(t *testing.T) {
	t.Run("passes filters to the service", func(t *testing.T) {
		var gotFilter services.ExpenseFilter
		svc := &mockExpenseService{
			getUserExpensesFn: func(_ string, _ pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "GET", "/expenses?category=Food&from=2026-08-01T00:00:00Z", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Category == nil || *gotFilter.Category != models.CategoryFood {
			t.Error("expected category filter to reach the service")
		}
		if gotFilter.FromDate == nil {
			t.Error("expected from date filter to reach the service")
		}
	})

	t.Run("returns 400 on bad from date", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "GET", "/expenses?from=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestExpenseHandler_GetExpenseByID(t *testing.T) {
	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseByIDFn: func(string, string) (*models.Expense, error) {
				return nil, apperrors.ErrExpenseNotFound
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "GET", "/expenses/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "DELETE", "/expenses/exp-1", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
