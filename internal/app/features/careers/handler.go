// internal/app/features/careers/handler.go
package careers

import (
	"context"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	careerstore "github.com/corefield/opsdesk/internal/app/store/careers"
	"github.com/corefield/opsdesk/internal/app/system/htmlsanitize"
	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/viewdata"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Store  *careerstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *careerstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Careers  []models.Career
	OpenOnly bool
	Range    paging.Range
	HasNext  bool
}

type formData struct {
	viewdata.BaseVM
	Career models.Career
	Error  string
	IsEdit bool
}

type viewData struct {
	viewdata.BaseVM
	Career      models.Career
	Description template.HTML
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	openOnly := query.Get(r, "open") == "1"

	rows, err := h.Store.List(ctx, openOnly, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list careers failed", err, "Could not load job postings.", "/")
		return
	}
	hasNext := paging.Trim(&rows)

	templates.Render(w, r, "careers_list", listData{
		BaseVM:   viewdata.NewBaseVM(r, "Careers", "/"),
		Careers:  rows,
		OpenOnly: openOnly,
		Range:    paging.ComputeRange(start, len(rows)),
		HasNext:  hasNext,
	})
}

func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "careers_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "New posting", "/careers"),
		Career: models.Career{Open: true},
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/careers")
		return
	}

	c := careerFromForm(r)
	if c.Title == "" {
		h.renderFormWithError(w, r, c, "Title is required.", false)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, c)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create career failed", err, "Could not save the posting.", "/careers")
		return
	}
	http.Redirect(w, r, "/careers/"+created.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "careers_view", viewData{
		BaseVM:      viewdata.NewBaseVM(r, c.Title, "/careers"),
		Career:      c,
		Description: template.HTML(c.Description),
	})
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "careers_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "Edit "+c.Title, "/careers"),
		Career: c,
		IsEdit: true,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad career id", err, "Invalid posting.", "/careers")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/careers")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateInfo(ctx, id, careerFromForm(r)); err != nil {
		h.ErrLog.LogServerError(w, r, "update career failed", err, "Could not save the posting.", "/careers")
		return
	}
	http.Redirect(w, r, "/careers/"+id.Hex(), http.StatusSeeOther)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad career id", err, "Invalid posting.", "/careers")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "delete career failed", err, "Could not delete the posting.", "/careers")
		return
	}
	http.Redirect(w, r, "/careers", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.Career, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad career id", err, "Invalid posting.", "/careers")
		return models.Career{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return c, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That posting does not exist.", "/careers")
	default:
		h.ErrLog.LogServerError(w, r, "load career failed", err, "Could not load the posting.", "/careers")
	}
	return models.Career{}, false
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, c models.Career, msg string, isEdit bool) {
	title := "New posting"
	if isEdit {
		title = "Edit " + c.Title
	}
	templates.Render(w, r, "careers_form", formData{
		BaseVM: viewdata.NewBaseVM(r, title, "/careers"),
		Career: c,
		Error:  msg,
		IsEdit: isEdit,
	})
}

// careerFromForm sanitizes the description since postings render as HTML
// on the public site.
func careerFromForm(r *http.Request) models.Career {
	return models.Career{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Description: htmlsanitize.Sanitize(r.FormValue("description")),
		Open:        r.FormValue("open") == "on" || r.FormValue("open") == "true",
	}
}
