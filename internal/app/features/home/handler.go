// internal/app/features/home/handler.go
package home

import (
	"context"
	"net/http"

	pagestore "github.com/corefield/opsdesk/internal/app/store/pages"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/viewdata"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler renders the landing page. It is on the open-path list, so it
// must work for both anonymous and signed-in visitors.
type Handler struct {
	Pages *pagestore.Store
	Log   *zap.Logger
}

func NewHandler(pages *pagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Pages: pages, Log: logger}
}

type homeData struct {
	viewdata.BaseVM
	Pages []models.Page
}

// Serve handles GET /.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	published, err := h.Pages.ListPublished(ctx, 0, 20)
	if err != nil {
		h.Log.Warn("home: list published pages failed", zap.Error(err))
	}

	templates.Render(w, r, "home", homeData{
		BaseVM: viewdata.NewBaseVM(r, "Home", "/"),
		Pages:  published,
	})
}
