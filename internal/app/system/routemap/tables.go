// internal/app/system/routemap/tables.go
package routemap

import (
	"github.com/corefield/opsdesk/internal/app/system/authz"
)

// Resource declares one portal resource and the requirements guarding its
// read and write operations. The standard page and API rules are generated
// from it, so the two registries cannot drift for the common CRUD surface.
// Routes outside the standard shape (workflow transitions, exports) are
// appended as explicit extra rules below.
type Resource struct {
	Base   string // page base path, e.g. "/employees"
	View   authz.Requirement
	Manage authz.Requirement
}

// pageRules generates the navigation entries for a resource. Exact entries
// (list, new) always win over the [id] templates, and the templates differ
// in segment count, so generated rules never shadow each other.
func (rs Resource) pageRules() []Rule {
	return []Rule{
		{Template: rs.Base, Require: rs.View},
		{Template: rs.Base + "/new", Require: rs.Manage},
		{Template: rs.Base + "/[id]", Require: rs.View},
		{Template: rs.Base + "/[id]/edit", Require: rs.Manage},
		{Template: rs.Base + "/[id]/delete", Require: rs.Manage},
	}
}

// apiRules generates the METHOD:template entries for a resource under /api.
func (rs Resource) apiRules() []Rule {
	base := "/api" + rs.Base
	return []Rule{
		{Method: "GET", Template: base, Require: rs.View},
		{Method: "POST", Template: base, Require: rs.Manage},
		{Method: "GET", Template: base + "/[id]", Require: rs.View},
		{Method: "PUT", Template: base + "/[id]", Require: rs.Manage},
		{Method: "DELETE", Template: base + "/[id]", Require: rs.Manage},
	}
}

// resources is the shared resource-to-permission declaration both
// registries derive from.
var resources = []Resource{
	{
		Base:   "/employees",
		View:   authz.AnyOf(authz.PermViewEmployees, authz.PermManageEmployees),
		Manage: authz.AllOf(authz.PermManageEmployees),
	},
	{
		Base:   "/payroll",
		View:   authz.AnyOf(authz.PermViewPayroll, authz.PermManagePayroll),
		Manage: authz.AllOf(authz.PermManagePayroll),
	},
	{
		Base:   "/expenses",
		View:   authz.AllOf(authz.PermManageExpenses),
		Manage: authz.AllOf(authz.PermManageExpenses),
	},
	{
		Base:   "/clients",
		View:   authz.AnyOf(authz.PermManageClients, authz.PermViewInvoices),
		Manage: authz.AllOf(authz.PermManageClients),
	},
	{
		Base:   "/invoices",
		View:   authz.AnyOf(authz.PermViewInvoices, authz.PermManageInvoices),
		Manage: authz.AllOf(authz.PermManageInvoices),
	},
	{
		Base:   "/pages",
		View:   authz.AllOf(authz.PermManagePages),
		Manage: authz.AllOf(authz.PermManagePages),
	},
	{
		Base:   "/careers",
		View:   authz.AllOf(authz.PermManageCareers),
		Manage: authz.AllOf(authz.PermManageCareers),
	},
	{
		Base:   "/manage-projects",
		View:   authz.AnyOf(authz.PermViewProjects, authz.PermManageProjects, authz.PermApproveProjects),
		Manage: authz.AllOf(authz.PermManageProjects),
	},
	{
		Base:   "/users",
		View:   authz.AllOf(authz.PermManageUsers),
		Manage: authz.AllOf(authz.PermManageUsers),
	},
}

// extraPageRules covers routes outside the generated CRUD shape. Matching
// is first-declared-wins, so every template here must keep a literal tail
// segment distinct from the generated edit/delete tails. The startup
// overlap pass flags violations.
var extraPageRules = []Rule{
	{Template: "/manage-projects/[id]/submit", Require: authz.AllOf(authz.PermManageProjects)},
	{Template: "/manage-projects/[id]/approve", Require: authz.AllOf(authz.PermApproveProjects)},
	{Template: "/manage-projects/[id]/reject", Require: authz.AllOf(authz.PermApproveProjects)},
	{Template: "/invoices/[id]/send", Require: authz.AllOf(authz.PermManageInvoices)},
	{Template: "/invoices/[id]/paid", Require: authz.AllOf(authz.PermManageInvoices)},
	{Template: "/pages/[id]/publish", Require: authz.AllOf(authz.PermManagePages)},
}

var extraAPIRules = []Rule{
	{Method: "POST", Template: "/api/manage-projects/[id]/submit", Require: authz.AllOf(authz.PermManageProjects)},
	{Method: "POST", Template: "/api/manage-projects/[id]/approve", Require: authz.AllOf(authz.PermApproveProjects)},
	{Method: "POST", Template: "/api/manage-projects/[id]/reject", Require: authz.AllOf(authz.PermApproveProjects)},
	{Method: "GET", Template: "/api/payroll/period/[period]", Require: authz.AnyOf(authz.PermViewPayroll, authz.PermManagePayroll)},
	{Method: "POST", Template: "/api/invoices/[id]/send", Require: authz.AllOf(authz.PermManageInvoices)},
	{Method: "POST", Template: "/api/invoices/[id]/paid", Require: authz.AllOf(authz.PermManageInvoices)},
	{Method: "POST", Template: "/api/pages/[id]/publish", Require: authz.AllOf(authz.PermManagePages)},
}

// PageRegistry builds the navigation permission table.
func PageRegistry() *Registry {
	var rules []Rule
	for _, rs := range resources {
		rules = append(rules, rs.pageRules()...)
	}
	rules = append(rules, extraPageRules...)
	return MustNew(rules)
}

// APIRegistry builds the METHOD:path permission table.
func APIRegistry() *Registry {
	var rules []Rule
	for _, rs := range resources {
		rules = append(rules, rs.apiRules()...)
	}
	rules = append(rules, extraAPIRules...)
	return MustNew(rules)
}
