package routemap

import (
	"testing"

	"github.com/corefield/opsdesk/internal/app/system/authz"
)

func testRegistry(t *testing.T, rules []Rule) *Registry {
	t.Helper()
	reg, err := New(rules)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return reg
}

func TestMatch_ExactBeatsTemplate(t *testing.T) {
	reg := testRegistry(t, []Rule{
		{Template: "/manage-projects/[id]", Require: authz.AllOf("VIEW")},
		{Template: "/manage-projects/new", Require: authz.AllOf("CREATE")},
	})

	req, ok := reg.Match("", "/manage-projects/new")
	if !ok {
		t.Fatal("expected a match for /manage-projects/new")
	}
	if len(req.Permissions) != 1 || req.Permissions[0] != "CREATE" {
		t.Errorf("exact entry lost to template: got %v", req.Permissions)
	}
}

func TestMatch_TemplateIsolation(t *testing.T) {
	reg := testRegistry(t, []Rule{
		{Template: "/manage-projects/[id]", Require: authz.AllOf("VIEW")},
	})

	if _, ok := reg.Match("", "/manage-projects/123"); !ok {
		t.Error("template did not match a single-segment id")
	}
	if _, ok := reg.Match("", "/manage-projects/new/extra"); ok {
		t.Error("template matched a path with an extra segment")
	}
	if _, ok := reg.Match("", "/manage-projects"); ok {
		t.Error("template matched a path with a missing segment")
	}
	if _, ok := reg.Match("", "/manage-projects/a/b"); ok {
		t.Error("placeholder crossed a slash")
	}
}

func TestMatch_PlaceholderCharset(t *testing.T) {
	reg := testRegistry(t, []Rule{
		{Template: "/employees/[id]", Require: authz.AllOf("VIEW")},
	})

	if _, ok := reg.Match("", "/employees/64f0c2a1_b2-c3"); !ok {
		t.Error("identifier with letters, digits, _ and - rejected")
	}
	if _, ok := reg.Match("", "/employees/a%20b"); ok {
		t.Error("identifier with characters outside the charset matched")
	}
}

func TestMatch_DeclarationOrderWins(t *testing.T) {
	reg := testRegistry(t, []Rule{
		{Template: "/x/[a]", Require: authz.AllOf("FIRST")},
		{Template: "/x/[b]", Require: authz.AllOf("SECOND")},
	})

	req, ok := reg.Match("", "/x/anything")
	if !ok {
		t.Fatal("expected a match")
	}
	if req.Permissions[0] != "FIRST" {
		t.Errorf("later template won over earlier one: got %v", req.Permissions)
	}
}

func TestMatch_TrailingSlashNormalized(t *testing.T) {
	reg := testRegistry(t, []Rule{
		{Template: "/employees", Require: authz.AllOf("VIEW")},
		{Template: "/employees/[id]", Require: authz.AllOf("VIEW")},
	})

	if _, ok := reg.Match("", "/employees/"); !ok {
		t.Error("trailing slash broke an exact match")
	}
	if _, ok := reg.Match("", "/employees/42/"); !ok {
		t.Error("trailing slash broke a template match")
	}
}

func TestMatch_MethodKeying(t *testing.T) {
	reg := testRegistry(t, []Rule{
		{Method: "GET", Template: "/api/invoices/[id]", Require: authz.AllOf("VIEW")},
		{Method: "PUT", Template: "/api/invoices/[id]", Require: authz.AllOf("MANAGE")},
	})

	req, ok := reg.Match("GET", "/api/invoices/42")
	if !ok || req.Permissions[0] != "VIEW" {
		t.Errorf("GET lookup: ok=%v req=%v", ok, req.Permissions)
	}
	req, ok = reg.Match("PUT", "/api/invoices/42")
	if !ok || req.Permissions[0] != "MANAGE" {
		t.Errorf("PUT lookup: ok=%v req=%v", ok, req.Permissions)
	}
	// An unregistered method on a registered path is not a match.
	if _, ok := reg.Match("DELETE", "/api/invoices/42"); ok {
		t.Error("unregistered method matched")
	}
}

func TestMatch_NotFound(t *testing.T) {
	reg := testRegistry(t, []Rule{
		{Template: "/employees", Require: authz.AllOf("VIEW")},
	})
	if _, ok := reg.Match("", "/payroll"); ok {
		t.Error("unregistered path matched")
	}
}

func TestNew_RejectsBadTemplates(t *testing.T) {
	if _, err := New([]Rule{{Template: "employees", Require: authz.AllOf("X")}}); err == nil {
		t.Error("relative template accepted")
	}
	if _, err := New([]Rule{
		{Template: "/employees", Require: authz.AllOf("X")},
		{Template: "/employees", Require: authz.AllOf("Y")},
	}); err == nil {
		t.Error("duplicate template accepted")
	}
}

func TestOverlaps(t *testing.T) {
	reg := testRegistry(t, []Rule{
		{Template: "/payroll/[id]/edit", Require: authz.AllOf("A")},
		{Template: "/payroll/period/[period]", Require: authz.AllOf("B")},
	})
	// /payroll/period/edit matches both; the earlier rule shadows.
	if pairs := Overlaps(reg); len(pairs) != 1 {
		t.Errorf("expected one overlapping pair, got %v", pairs)
	}

	clean := testRegistry(t, []Rule{
		{Template: "/payroll/[id]/edit", Require: authz.AllOf("A")},
		{Template: "/payroll/[id]/delete", Require: authz.AllOf("B")},
		{Template: "/expenses/[id]", Require: authz.AllOf("C")},
	})
	if pairs := Overlaps(clean); len(pairs) != 0 {
		t.Errorf("expected no overlaps, got %v", pairs)
	}
}

// The production tables must not contain silently shadowed templates.
func TestDefaultRegistriesHaveNoShadowing(t *testing.T) {
	if pairs := Overlaps(PageRegistry()); len(pairs) != 0 {
		t.Errorf("page registry has shadowed templates: %v", pairs)
	}
	if pairs := Overlaps(APIRegistry()); len(pairs) != 0 {
		t.Errorf("api registry has shadowed templates: %v", pairs)
	}
}

// Spot checks that the generated tables cover the surfaces the portal
// actually mounts, with the page and API sides agreeing on requirements.
func TestDefaultTables(t *testing.T) {
	pages := PageRegistry()
	api := APIRegistry()

	req, ok := pages.Match("", "/manage-projects/123/edit")
	if !ok {
		t.Fatal("page table is missing /manage-projects/[id]/edit")
	}
	if req.Mode != authz.ModeAll || req.Permissions[0] != authz.PermManageProjects {
		t.Errorf("project edit requirement: %+v", req)
	}

	preq, ok := api.Match("PUT", "/api/manage-projects/123")
	if !ok {
		t.Fatal("api table is missing PUT /api/manage-projects/[id]")
	}
	if preq.Permissions[0] != authz.PermManageProjects {
		t.Errorf("api project update requirement: %+v", preq)
	}

	// The approval transition needs the approval permission, not manage.
	areq, ok := api.Match("POST", "/api/manage-projects/123/approve")
	if !ok {
		t.Fatal("api table is missing POST /api/manage-projects/[id]/approve")
	}
	if areq.Permissions[0] != authz.PermApproveProjects {
		t.Errorf("approve requirement: %+v", areq)
	}

	if _, ok := api.Match("PATCH", "/api/employees/42"); ok {
		t.Error("api table matched a method the portal does not register")
	}
}
