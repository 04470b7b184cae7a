// internal/app/features/payroll/routes.go
package payroll

import "github.com/go-chi/chi/v5"

// Routes serves the payroll pages; mounted under /payroll.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/new", h.New)
	r.Post("/new", h.Create)
	r.Get("/{id}", h.View)
	r.Get("/{id}/edit", h.Edit)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/delete", h.Delete)
	return r
}

// APIRoutes serves the payroll JSON endpoints; mounted under /api/payroll.
// The period route is declared before {id} so it never parses as an id.
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.APIList)
	r.Post("/", h.APICreate)
	r.Get("/period/{period}", h.APIListByPeriod)
	r.Get("/{id}", h.APIGet)
	r.Put("/{id}", h.APIUpdate)
	r.Delete("/{id}", h.APIDelete)
	return r
}
