// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes serves the login form; mounted under /auth/login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}

// APIRoutes serves the JSON auth endpoints; mounted under /api/auth.
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.APILogin)
	r.Post("/logout", h.APILogout)
	return r
}
