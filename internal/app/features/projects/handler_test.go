package projects_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	"github.com/corefield/opsdesk/internal/app/features/projects"
	projectstore "github.com/corefield/opsdesk/internal/app/store/projects"
	"github.com/corefield/opsdesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *projects.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return projects.NewHandler(projectstore.New(db), uierrors.NewErrorLogger(logger), logger)
}

func createProject(t *testing.T, h *projects.Handler, owner testutil.TestUser, name string) string {
	t.Helper()
	body := strings.NewReader(`{"name":"` + name + `","description":"test project"}`)
	req := testutil.WithUser(httptest.NewRequest("POST", "/api/manage-projects", body), owner)
	rec := httptest.NewRecorder()
	h.APICreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse create response: %v", err)
	}
	if created.Status != "draft" {
		t.Fatalf("new project status: got %q, want draft", created.Status)
	}
	return created.ID
}

func postTransition(t *testing.T, h *projects.Handler, handler http.HandlerFunc, id, path string, user testutil.TestUser, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/manage-projects/"+id+"/"+path, strings.NewReader(body))
	req = testutil.WithChiURLParam(testutil.WithUser(req, user), "id", id)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestWorkflow_SubmitThenApprove(t *testing.T) {
	h := newTestHandler(t)
	owner := testutil.UserWithPermissions("MANAGE_PROJECTS")
	approver := testutil.UserWithPermissions("APPROVE_PROJECTS")

	id := createProject(t, h, owner, "Warehouse Revamp")

	rec := postTransition(t, h, h.APISubmit, id, "submit", owner, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	rec = postTransition(t, h, h.APIApprove, id, "approve", approver, `{"note":"looks good"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	getReq := testutil.WithChiURLParam(httptest.NewRequest("GET", "/api/manage-projects/"+id, nil), "id", id)
	getRec := httptest.NewRecorder()
	h.APIGet(getRec, getReq)

	var got struct {
		Status       string `json:"status"`
		DecisionNote string `json:"decision_note"`
	}
	if err := json.Unmarshal(getRec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse get response: %v", err)
	}
	if got.Status != "approved" {
		t.Errorf("status: got %q, want approved", got.Status)
	}
	if got.DecisionNote != "looks good" {
		t.Errorf("decision note: got %q", got.DecisionNote)
	}
}

func TestWorkflow_SubmitTwiceConflicts(t *testing.T) {
	h := newTestHandler(t)
	owner := testutil.UserWithPermissions("MANAGE_PROJECTS")

	id := createProject(t, h, owner, "Duplicate Submit")

	if rec := postTransition(t, h, h.APISubmit, id, "submit", owner, ""); rec.Code != http.StatusOK {
		t.Fatalf("first submit: got %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := postTransition(t, h, h.APISubmit, id, "submit", owner, ""); rec.Code != http.StatusConflict {
		t.Errorf("second submit: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestWorkflow_DecideRequiresSubmitted(t *testing.T) {
	h := newTestHandler(t)
	owner := testutil.UserWithPermissions("MANAGE_PROJECTS")
	approver := testutil.UserWithPermissions("APPROVE_PROJECTS")

	id := createProject(t, h, owner, "Still Draft")

	rec := postTransition(t, h, h.APIApprove, id, "approve", approver, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("approve draft: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestWorkflow_RejectedEditReturnsToDraft(t *testing.T) {
	h := newTestHandler(t)
	owner := testutil.UserWithPermissions("MANAGE_PROJECTS")
	approver := testutil.UserWithPermissions("APPROVE_PROJECTS")

	id := createProject(t, h, owner, "Needs Work")

	if rec := postTransition(t, h, h.APISubmit, id, "submit", owner, ""); rec.Code != http.StatusOK {
		t.Fatalf("submit: got %d", rec.Code)
	}
	if rec := postTransition(t, h, h.APIReject, id, "reject", approver, `{"note":"scope too big"}`); rec.Code != http.StatusOK {
		t.Fatalf("reject: got %d", rec.Code)
	}

	body := strings.NewReader(`{"name":"Needs Work","description":"trimmed scope"}`)
	req := testutil.WithChiURLParam(httptest.NewRequest("PUT", "/api/manage-projects/"+id, body), "id", id)
	rec := httptest.NewRecorder()
	h.APIUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update rejected: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	getReq := testutil.WithChiURLParam(httptest.NewRequest("GET", "/api/manage-projects/"+id, nil), "id", id)
	getRec := httptest.NewRecorder()
	h.APIGet(getRec, getReq)

	var got struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(getRec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse get response: %v", err)
	}
	if got.Status != "draft" {
		t.Errorf("status after editing rejected project: got %q, want draft", got.Status)
	}
}

func TestAPIDelete_SubmittedConflicts(t *testing.T) {
	h := newTestHandler(t)
	owner := testutil.UserWithPermissions("MANAGE_PROJECTS")

	id := createProject(t, h, owner, "Protected")
	if rec := postTransition(t, h, h.APISubmit, id, "submit", owner, ""); rec.Code != http.StatusOK {
		t.Fatalf("submit: got %d", rec.Code)
	}

	req := testutil.WithChiURLParam(httptest.NewRequest("DELETE", "/api/manage-projects/"+id, nil), "id", id)
	rec := httptest.NewRecorder()
	h.APIDelete(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete submitted: got %d, want %d", rec.Code, http.StatusConflict)
	}
}
