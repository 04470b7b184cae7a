// internal/app/features/errors/routes.go
package errors

import "github.com/go-chi/chi/v5"

// Register attaches the error pages to the root router. They live at
// the top level rather than a mount so the landing page can keep the
// "/" subtree.
func Register(r chi.Router, h *Handler) {
	r.Get("/unauthorized", h.Unauthorized)
	r.Get("/forbidden", h.Forbidden)
	r.Get("/error", h.ServerError)
}
