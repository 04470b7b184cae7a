package employees_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	"github.com/corefield/opsdesk/internal/app/features/employees"
	employeestore "github.com/corefield/opsdesk/internal/app/store/employees"
	"github.com/corefield/opsdesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*employees.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := employees.NewHandler(employeestore.New(db), uierrors.NewErrorLogger(logger), logger)
	return h, testutil.NewFixtures(t, db)
}

func TestAPICreate_And_Get(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"full_name":"Mira Patel","email":"mira@example.com","title":"Accountant","department":"Finance"}`)
	req := httptest.NewRequest("POST", "/api/employees", body)
	rec := httptest.NewRecorder()
	h.APICreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse create response: %v", err)
	}
	if created.Email != "mira@example.com" {
		t.Errorf("email: got %q", created.Email)
	}

	getReq := testutil.WithChiURLParam(httptest.NewRequest("GET", "/api/employees/"+created.ID, nil), "id", created.ID)
	getRec := httptest.NewRecorder()
	h.APIGet(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d, want %d", getRec.Code, http.StatusOK)
	}
}

func TestAPICreate_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/employees", strings.NewReader(`{"title":"No Name"}`))
	rec := httptest.NewRecorder()
	h.APICreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAPIGet_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	fake := "64b000000000000000000000"
	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/api/employees/"+fake, nil), "id", fake)
	rec := httptest.NewRecorder()
	h.APIGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected a message in the error body")
	}
}

func TestAPIList(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateEmployee(ctx, "Alpha One", "alpha@example.com")
	fixtures.CreateEmployee(ctx, "Beta Two", "beta@example.com")

	req := httptest.NewRequest("GET", "/api/employees", nil)
	rec := httptest.NewRecorder()
	h.APIList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Employees []struct {
			FullName string `json:"full_name"`
		} `json:"employees"`
		HasNext bool `json:"has_next"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(resp.Employees) != 2 {
		t.Errorf("employees: got %d, want 2", len(resp.Employees))
	}
	if resp.HasNext {
		t.Error("has_next should be false for a two-row list")
	}
}

func TestAPIDelete(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	emp := fixtures.CreateEmployee(ctx, "Gone Soon", "gone@example.com")
	id := emp.ID.Hex()

	req := testutil.WithChiURLParam(httptest.NewRequest("DELETE", "/api/employees/"+id, nil), "id", id)
	rec := httptest.NewRecorder()
	h.APIDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	again := testutil.WithChiURLParam(httptest.NewRequest("DELETE", "/api/employees/"+id, nil), "id", id)
	rec = httptest.NewRecorder()
	h.APIDelete(rec, again)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
