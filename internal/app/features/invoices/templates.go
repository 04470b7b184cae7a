// internal/app/features/invoices/templates.go
package invoices

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "invoices",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
