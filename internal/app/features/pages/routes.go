// internal/app/features/pages/routes.go
package pages

import "github.com/go-chi/chi/v5"

// Routes serves the CMS pages; mounted under /pages.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/new", h.New)
	r.Post("/new", h.Create)
	r.Get("/{id}", h.View)
	r.Get("/{id}/edit", h.Edit)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/publish", h.Publish)
	r.Post("/{id}/delete", h.Delete)
	return r
}

// APIRoutes serves the CMS JSON endpoints; mounted under /api/pages.
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.APIList)
	r.Post("/", h.APICreate)
	r.Get("/{id}", h.APIGet)
	r.Put("/{id}", h.APIUpdate)
	r.Post("/{id}/publish", h.APIPublish)
	r.Delete("/{id}", h.APIDelete)
	return r
}
