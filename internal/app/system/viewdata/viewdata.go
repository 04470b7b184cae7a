// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"fmt"
	"net/http"

	"github.com/corefield/opsdesk/internal/app/system/auth"
	"github.com/corefield/opsdesk/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from the gate)
	IsLoggedIn bool
	Role       string
	IsAdmin    bool

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
}

// SiteName is the portal's display name.
const SiteName = "OpsDesk"

// Money formats integer cents as a decimal amount for display, e.g.
// 123456 -> "1234.56". Available to every template through BaseVM.
func (BaseVM) Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// NewBaseVM creates a populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
	}
	if cred, ok := auth.CurrentCredential(r); ok {
		vm.IsLoggedIn = true
		vm.Role = cred.Role
		vm.IsAdmin = authz.HasOverride(cred.Permissions)
	}
	return vm
}
