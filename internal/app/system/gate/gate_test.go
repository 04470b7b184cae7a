package gate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/corefield/opsdesk/internal/app/system/auth"
	"github.com/corefield/opsdesk/internal/app/system/authz"
	"github.com/corefield/opsdesk/internal/app/system/routemap"
	"go.uber.org/zap"
)

var clock = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	gate   *Gate
	tokens *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := auth.NewTokenManager("gate-test-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	pages := routemap.MustNew([]routemap.Rule{
		{Template: "/manage-projects", Require: authz.AnyOf(authz.PermViewProjects, authz.PermManageProjects)},
		{Template: "/manage-projects/new", Require: authz.AllOf(authz.PermManageProjects)},
		{Template: "/manage-projects/[id]", Require: authz.AnyOf(authz.PermViewProjects, authz.PermManageProjects)},
		{Template: "/manage-projects/[id]/edit", Require: authz.AllOf(authz.PermManageProjects)},
		{Template: "/payroll", Require: authz.AllOf(authz.PermViewPayroll, authz.PermManagePayroll)},
	})
	api := routemap.MustNew([]routemap.Rule{
		{Method: "GET", Template: "/api/manage-projects", Require: authz.AnyOf(authz.PermViewProjects, authz.PermManageProjects)},
		{Method: "PUT", Template: "/api/manage-projects/[id]", Require: authz.AllOf(authz.PermManageProjects)},
	})

	g := New(tokens, pages, api, zap.NewNop()).WithClock(func() time.Time { return clock })
	return &fixture{gate: g, tokens: tokens}
}

// okHandler records that the gate forwarded the request and whether a
// credential was attached.
type okHandler struct {
	called bool
	cred   *auth.Credential
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.cred, _ = auth.CurrentCredential(r)
	w.WriteHeader(http.StatusOK)
}

func (f *fixture) request(t *testing.T, method, target string, perms []string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if perms != nil {
		raw, err := f.tokens.Mint(auth.Credential{
			SubjectID:   "64f0c2a1b2c3d4e5f6a7b8c9",
			Role:        "Staff",
			Permissions: perms,
		}, clock.Add(-time.Minute), time.Hour)
		if err != nil {
			t.Fatalf("Mint: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: raw})
	}
	return req
}

/* ── UI surface ─────────────────────────────────────────────────────── */

func TestPages_NoCredentialRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.Pages(next).ServeHTTP(rec, f.request(t, "GET", "/manage-projects?sort=name", nil))

	if next.called {
		t.Fatal("handler reached without a credential")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, LoginPath+"?from=") {
		t.Fatalf("redirect location: %q", loc)
	}
	from, _ := url.QueryUnescape(strings.TrimPrefix(loc, LoginPath+"?from="))
	if from != "/manage-projects?sort=name" {
		t.Errorf("return path: got %q", from)
	}
}

func TestPages_InvalidCredentialRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("GET", "/manage-projects", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"})
	f.gate.Pages(next).ServeHTTP(rec, req)

	if next.called {
		t.Fatal("handler reached with an invalid credential")
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, LoginPath) {
		t.Errorf("redirect location: %q", loc)
	}
}

func TestPages_ExpiredCredentialRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("GET", "/manage-projects", nil)
	raw, err := f.tokens.Mint(auth.Credential{SubjectID: "u1"}, clock.Add(-2*time.Hour), time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: raw})
	f.gate.Pages(next).ServeHTTP(rec, req)

	if next.called {
		t.Fatal("handler reached with an expired credential")
	}
}

// Scenario from the policy contract: /manage-projects/123/edit with only
// VIEW_PROJECTS granted lands on /unauthorized, not /auth/login.
func TestPages_InsufficientPermissionRedirectsToUnauthorized(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.Pages(next).ServeHTTP(rec,
		f.request(t, "GET", "/manage-projects/123/edit", []string{authz.PermViewProjects}))

	if next.called {
		t.Fatal("handler reached without the manage permission")
	}
	if loc := rec.Header().Get("Location"); loc != UnauthorizedPath {
		t.Errorf("redirect location: got %q, want %q", loc, UnauthorizedPath)
	}
}

func TestPages_UnregisteredRouteFailsClosed(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.Pages(next).ServeHTTP(rec,
		f.request(t, "GET", "/brand-new-feature", []string{authz.PermViewProjects}))

	if next.called {
		t.Fatal("handler reached for a route with no registry entry")
	}
	if loc := rec.Header().Get("Location"); loc != UnauthorizedPath {
		t.Errorf("redirect location: got %q, want %q", loc, UnauthorizedPath)
	}
}

func TestPages_AllowForwardsWithCredential(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.Pages(next).ServeHTTP(rec,
		f.request(t, "GET", "/manage-projects/123", []string{authz.PermViewProjects}))

	if !next.called {
		t.Fatalf("handler not reached: status %d, location %q", rec.Code, rec.Header().Get("Location"))
	}
	if next.cred == nil || next.cred.SubjectID != "64f0c2a1b2c3d4e5f6a7b8c9" {
		t.Errorf("credential not attached to request context: %+v", next.cred)
	}
}

func TestPages_ExactEntryWinsOverTemplate(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	// /manage-projects/new is an exact entry requiring MANAGE_PROJECTS;
	// the [id] template would have allowed VIEW_PROJECTS.
	f.gate.Pages(next).ServeHTTP(rec,
		f.request(t, "GET", "/manage-projects/new", []string{authz.PermViewProjects}))

	if next.called {
		t.Fatal("exact entry was bypassed via the [id] template")
	}
}

func TestPages_OverrideBypassesRequirement(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.Pages(next).ServeHTTP(rec,
		f.request(t, "GET", "/payroll", []string{authz.Override}))

	if !next.called {
		t.Fatal("override permission did not grant access")
	}
}

func TestPages_PublicPathSkipsChecks(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.Pages(next).ServeHTTP(rec, httptest.NewRequest("GET", LoginPath, nil))

	if !next.called {
		t.Fatal("login page blocked for anonymous caller")
	}
}

func TestPages_LoginWhileAuthenticatedRedirectsHome(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.Pages(next).ServeHTTP(rec,
		f.request(t, "GET", LoginPath, []string{authz.PermViewProjects}))

	if next.called {
		t.Fatal("login page rendered for an already-authenticated caller")
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect location: got %q, want %q", loc, "/")
	}
}

func TestPages_OpenPathsSkipRouteMatch(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/", UnauthorizedPath, "/error"} {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		f.gate.Pages(next).ServeHTTP(rec, f.request(t, "GET", path, []string{}))
		if !next.called {
			t.Errorf("open path %s blocked for authenticated caller", path)
		}
	}
}

/* ── API surface ────────────────────────────────────────────────────── */

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
	return body.Message
}

func TestAPI_NoCredentialIs401(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.API(next).ServeHTTP(rec, f.request(t, "GET", "/api/manage-projects", nil))

	if next.called {
		t.Fatal("handler reached without a credential")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
	if rec.Header().Get("Location") != "" {
		t.Error("API surface must not redirect")
	}
	if msg := decodeMessage(t, rec); msg == "" {
		t.Error("401 body has no message")
	}
}

func TestAPI_InvalidCredentialIs401(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("GET", "/api/manage-projects", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "bogus"})
	f.gate.API(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != msgInvalidCredential {
		t.Errorf("message: got %q", msg)
	}
}

func TestAPI_InsufficientPermissionIs403(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.API(next).ServeHTTP(rec,
		f.request(t, "PUT", "/api/manage-projects/123", []string{authz.PermViewProjects}))

	if next.called {
		t.Fatal("handler reached without the manage permission")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
	// Distinct from the 401 messages so clients can tell "log in" from
	// "you lack entitlement".
	if msg := decodeMessage(t, rec); msg != msgInsufficient {
		t.Errorf("message: got %q", msg)
	}
}

func TestAPI_UnregisteredRouteIs403(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	// DELETE is not registered for this path; fail closed, not open.
	f.gate.API(next).ServeHTTP(rec,
		f.request(t, "DELETE", "/api/manage-projects/123", []string{authz.PermManageProjects}))

	if next.called {
		t.Fatal("handler reached for unregistered method+path")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

// Scenario: PUT with the override permission is allowed regardless of the
// route's declared requirement.
func TestAPI_OverrideAllows(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.API(next).ServeHTTP(rec,
		f.request(t, "PUT", "/api/manage-projects/123", []string{authz.Override}))

	if !next.called {
		t.Fatalf("override caller denied: status %d", rec.Code)
	}
}

func TestAPI_AllowAttachesIdentity(t *testing.T) {
	f := newFixture(t)
	next := &okHandler{}
	rec := httptest.NewRecorder()

	f.gate.API(next).ServeHTTP(rec,
		f.request(t, "GET", "/api/manage-projects", []string{authz.PermViewProjects}))

	if !next.called {
		t.Fatalf("allowed request did not reach handler: %d", rec.Code)
	}
	if next.cred == nil {
		t.Fatal("identity missing from request context")
	}
	if next.cred.Role != "Staff" || len(next.cred.Permissions) != 1 {
		t.Errorf("identity: %+v", next.cred)
	}
}

func TestAPI_PublicPathsBypass(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/auth/login", "/api/auth/logout", "/api/health"} {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		f.gate.API(next).ServeHTTP(rec, httptest.NewRequest("POST", path, nil))
		if !next.called {
			t.Errorf("public path %s blocked", path)
		}
	}
}
