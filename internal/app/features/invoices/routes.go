// internal/app/features/invoices/routes.go
package invoices

import "github.com/go-chi/chi/v5"

// Routes serves the invoice pages; mounted under /invoices.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/new", h.New)
	r.Post("/new", h.Create)
	r.Get("/{id}", h.View)
	r.Get("/{id}/edit", h.Edit)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/send", h.Send)
	r.Post("/{id}/paid", h.MarkPaid)
	r.Post("/{id}/delete", h.Delete)
	return r
}

// APIRoutes serves the invoice JSON endpoints; mounted under /api/invoices.
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.APIList)
	r.Post("/", h.APICreate)
	r.Get("/{id}", h.APIGet)
	r.Put("/{id}", h.APIUpdate)
	r.Post("/{id}/send", h.APISend)
	r.Post("/{id}/paid", h.APIMarkPaid)
	r.Delete("/{id}", h.APIDelete)
	return r
}
