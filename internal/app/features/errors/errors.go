// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/corefield/opsdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Unauthorized renders the "not permitted" page the gate redirects to.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Not authorized", "/"),
		Message: "You don't have permission to view this page.",
	})
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Access denied", "/"),
		Message: "Access to this resource is denied.",
	})
}

// ServerError renders the generic error page.
// GET /error
func (h *Handler) ServerError(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Something went wrong", "/"),
		Message: "An unexpected error occurred. Please try again.",
	})
}
