// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/corefield/opsdesk/internal/app/system/auth"
)

// Handler clears the credential cookie. Tokens are stateless, so there
// is no server-side session to tear down.
type Handler struct {
	Secure bool
}

func NewHandler(secure bool) *Handler {
	return &Handler{Secure: secure}
}

// Serve handles GET and POST /auth/logout.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w, h.Secure)
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}
