// internal/app/features/pages/handler.go
package pages

import (
	"context"
	"html/template"
	"net/http"
	"regexp"
	"strings"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	pagestore "github.com/corefield/opsdesk/internal/app/store/pages"
	"github.com/corefield/opsdesk/internal/app/system/htmlsanitize"
	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/viewdata"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type Handler struct {
	Store  *pagestore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *pagestore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Pages   []models.Page
	Range   paging.Range
	HasNext bool
}

type formData struct {
	viewdata.BaseVM
	Page   models.Page
	Error  string
	IsEdit bool
}

type viewData struct {
	viewdata.BaseVM
	Page models.Page
	Body template.HTML
}

// List handles GET /pages.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pages failed", err, "Could not load pages.", "/")
		return
	}
	hasNext := paging.Trim(&rows)

	templates.Render(w, r, "pages_list", listData{
		BaseVM:  viewdata.NewBaseVM(r, "Pages", "/"),
		Pages:   rows,
		Range:   paging.ComputeRange(start, len(rows)),
		HasNext: hasNext,
	})
}

// New handles GET /pages/new.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "pages_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "New page", "/pages"),
	})
}

// Create handles POST /pages/new.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/pages")
		return
	}

	p := pageFromForm(r)
	if p.Title == "" {
		h.renderFormWithError(w, r, p, "Title is required.", false)
		return
	}
	if !slugPattern.MatchString(p.Slug) {
		h.renderFormWithError(w, r, p, "Slug must be lowercase words separated by hyphens.", false)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, p)
	switch err {
	case nil:
		http.Redirect(w, r, "/pages/"+created.ID.Hex(), http.StatusSeeOther)
	case pagestore.ErrDuplicateSlug:
		h.renderFormWithError(w, r, p, "A page with this slug already exists.", false)
	default:
		h.ErrLog.LogServerError(w, r, "create page failed", err, "Could not save the page.", "/pages")
	}
}

// View handles GET /pages/{id}. The stored body was sanitized on the
// way in, so it renders unescaped here.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "pages_view", viewData{
		BaseVM: viewdata.NewBaseVM(r, p.Title, "/pages"),
		Page:   p,
		Body:   template.HTML(p.BodyHTML),
	})
}

// Edit handles GET /pages/{id}/edit.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "pages_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "Edit "+p.Title, "/pages"),
		Page:   p,
		IsEdit: true,
	})
}

// Update handles POST /pages/{id}/edit. The slug never changes after
// creation; only title and body do.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad page id", err, "Invalid page.", "/pages")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/pages")
		return
	}

	p := pageFromForm(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateContent(ctx, id, p.Title, p.BodyHTML); err != nil {
		h.ErrLog.LogServerError(w, r, "update page failed", err, "Could not save the page.", "/pages")
		return
	}
	http.Redirect(w, r, "/pages/"+id.Hex(), http.StatusSeeOther)
}

// Publish handles POST /pages/{id}/publish. The "state" field selects
// direction; anything other than "off" publishes.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad page id", err, "Invalid page.", "/pages")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/pages")
		return
	}
	published := r.FormValue("state") != "off"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.SetPublished(ctx, id, published); err != nil {
		h.ErrLog.LogServerError(w, r, "publish page failed", err, "Could not update the page.", "/pages")
		return
	}
	http.Redirect(w, r, "/pages/"+id.Hex(), http.StatusSeeOther)
}

// Delete handles POST /pages/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad page id", err, "Invalid page.", "/pages")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "delete page failed", err, "Could not delete the page.", "/pages")
		return
	}
	http.Redirect(w, r, "/pages", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.Page, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad page id", err, "Invalid page.", "/pages")
		return models.Page{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return p, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That page does not exist.", "/pages")
	default:
		h.ErrLog.LogServerError(w, r, "load page failed", err, "Could not load the page.", "/pages")
	}
	return models.Page{}, false
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, p models.Page, msg string, isEdit bool) {
	title := "New page"
	if isEdit {
		title = "Edit " + p.Title
	}
	templates.Render(w, r, "pages_form", formData{
		BaseVM: viewdata.NewBaseVM(r, title, "/pages"),
		Page:   p,
		Error:  msg,
		IsEdit: isEdit,
	})
}

// pageFromForm sanitizes the body so stored markup is always safe to
// render unescaped.
func pageFromForm(r *http.Request) models.Page {
	return models.Page{
		Slug:     strings.TrimSpace(strings.ToLower(r.FormValue("slug"))),
		Title:    strings.TrimSpace(r.FormValue("title")),
		BodyHTML: htmlsanitize.Sanitize(r.FormValue("body_html")),
	}
}
