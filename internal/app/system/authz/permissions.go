// internal/app/system/authz/permissions.go
package authz

// Permission names are atomic capability strings carried in the credential's
// permission set. The gate treats them as opaque tokens; only set membership
// matters. They are listed here so the route tables and the user editor share
// one vocabulary.
const (
	// Override grants unconditional access to every route. A credential
	// holding it satisfies any requirement without further evaluation.
	Override = "ADMIN"

	PermViewEmployees   = "VIEW_EMPLOYEES"
	PermManageEmployees = "MANAGE_EMPLOYEES"

	PermViewPayroll   = "VIEW_PAYROLL"
	PermManagePayroll = "MANAGE_PAYROLL"

	PermManageExpenses = "MANAGE_EXPENSES"

	PermViewInvoices   = "VIEW_INVOICES"
	PermManageInvoices = "MANAGE_INVOICES"
	PermManageClients  = "MANAGE_CLIENTS"

	PermManagePages   = "MANAGE_PAGES"
	PermManageCareers = "MANAGE_CAREERS"

	PermViewProjects    = "VIEW_PROJECTS"
	PermManageProjects  = "MANAGE_PROJECTS"
	PermApproveProjects = "APPROVE_PROJECTS"

	PermManageUsers = "MANAGE_USERS"
)

// All lists every assignable permission, override included. The user editor
// renders this list as checkboxes.
var All = []string{
	Override,
	PermViewEmployees,
	PermManageEmployees,
	PermViewPayroll,
	PermManagePayroll,
	PermManageExpenses,
	PermViewInvoices,
	PermManageInvoices,
	PermManageClients,
	PermManagePages,
	PermManageCareers,
	PermViewProjects,
	PermManageProjects,
	PermApproveProjects,
	PermManageUsers,
}

// IsKnown reports whether name is one of the defined permissions.
func IsKnown(name string) bool {
	for _, p := range All {
		if p == name {
			return true
		}
	}
	return false
}
