// internal/app/features/payroll/templates.go
package payroll

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "payroll",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
