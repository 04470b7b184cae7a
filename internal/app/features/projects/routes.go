// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// Routes serves the project pages; mounted under /manage-projects.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/new", h.New)
	r.Post("/new", h.Create)
	r.Get("/{id}", h.View)
	r.Get("/{id}/edit", h.Edit)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/submit", h.Submit)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
	r.Post("/{id}/delete", h.Delete)
	return r
}

// APIRoutes serves the project JSON endpoints; mounted under
// /api/manage-projects.
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.APIList)
	r.Post("/", h.APICreate)
	r.Get("/{id}", h.APIGet)
	r.Put("/{id}", h.APIUpdate)
	r.Post("/{id}/submit", h.APISubmit)
	r.Post("/{id}/approve", h.APIApprove)
	r.Post("/{id}/reject", h.APIReject)
	r.Delete("/{id}", h.APIDelete)
	return r
}
