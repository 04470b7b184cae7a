// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	projectstore "github.com/corefield/opsdesk/internal/app/store/projects"
	"github.com/corefield/opsdesk/internal/app/system/auth"
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

// Statuses a project moves through, in workflow order.
var Statuses = []string{
	models.ProjectDraft,
	models.ProjectSubmitted,
	models.ProjectApproved,
	models.ProjectRejected,
}

type Handler struct {
	Store  *projectstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *projectstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Projects []models.Project
	Statuses []string
	Status   string
	Range    paging.Range
	HasNext  bool
}

type formData struct {
	viewdata.BaseVM
	Project models.Project
	Error   string
	IsEdit  bool
}

type viewData struct {
	viewdata.BaseVM
	Project     models.Project
	CanEdit     bool
	CanSubmit   bool
	CanDecide   bool
	CanDelete   bool
}

// List handles GET /manage-projects, optionally filtered by ?status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	status := query.Get(r, "status")

	rows, err := h.Store.List(ctx, status, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list projects failed", err, "Could not load projects.", "/")
		return
	}
	hasNext := paging.Trim(&rows)

	templates.Render(w, r, "projects_list", listData{
		BaseVM:   viewdata.NewBaseVM(r, "Projects", "/"),
		Projects: rows,
		Statuses: Statuses,
		Status:   status,
		Range:    paging.ComputeRange(start, len(rows)),
		HasNext:  hasNext,
	})
}

// New handles GET /manage-projects/new.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "projects_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "New project", "/manage-projects"),
	})
}

// Create handles POST /manage-projects/new. The caller becomes the
// project owner.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/manage-projects")
		return
	}

	p := projectFromForm(r)
	if p.Name == "" {
		h.renderFormWithError(w, r, p, "Name is required.", false)
		return
	}
	owner, ok := h.callerID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "no caller id on create project", nil, "Could not identify you.", "/manage-projects")
		return
	}
	p.OwnerID = owner

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create project failed", err, "Could not save the project.", "/manage-projects")
		return
	}
	http.Redirect(w, r, "/manage-projects/"+created.ID.Hex(), http.StatusSeeOther)
}

// View handles GET /manage-projects/{id}.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	editable := p.Status == models.ProjectDraft || p.Status == models.ProjectRejected
	templates.Render(w, r, "projects_view", viewData{
		BaseVM:    viewdata.NewBaseVM(r, p.Name, "/manage-projects"),
		Project:   p,
		CanEdit:   editable,
		CanSubmit: p.Status == models.ProjectDraft,
		CanDecide: p.Status == models.ProjectSubmitted,
		CanDelete: editable,
	})
}

// Edit handles GET /manage-projects/{id}/edit.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	if p.Status != models.ProjectDraft && p.Status != models.ProjectRejected {
		h.ErrLog.LogBadRequest(w, r, "edit frozen project", projectstore.ErrBadTransition,
			"Submitted projects cannot be edited.", "/manage-projects/"+p.ID.Hex())
		return
	}
	templates.Render(w, r, "projects_form", formData{
		BaseVM:  viewdata.NewBaseVM(r, "Edit "+p.Name, "/manage-projects"),
		Project: p,
		IsEdit:  true,
	})
}

// Update handles POST /manage-projects/{id}/edit. Editing a rejected
// project returns it to draft with the decision cleared.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad project id", err, "Invalid project.", "/manage-projects")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/manage-projects")
		return
	}

	p := projectFromForm(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.UpdateInfo(ctx, id, p.Name, p.Description); err {
	case nil:
		http.Redirect(w, r, "/manage-projects/"+id.Hex(), http.StatusSeeOther)
	case projectstore.ErrBadTransition:
		h.ErrLog.LogBadRequest(w, r, "edit frozen project", err, "Submitted projects cannot be edited.", "/manage-projects/"+id.Hex())
	default:
		h.ErrLog.LogServerError(w, r, "update project failed", err, "Could not save the project.", "/manage-projects")
	}
}

// Submit handles POST /manage-projects/{id}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad project id", err, "Invalid project.", "/manage-projects")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.Submit(ctx, id); err {
	case nil:
		http.Redirect(w, r, "/manage-projects/"+id.Hex(), http.StatusSeeOther)
	case projectstore.ErrBadTransition:
		h.ErrLog.LogBadRequest(w, r, "submit non-draft project", err, "Only draft projects can be submitted.", "/manage-projects/"+id.Hex())
	default:
		h.ErrLog.LogServerError(w, r, "submit project failed", err, "Could not submit the project.", "/manage-projects")
	}
}

// Approve handles POST /manage-projects/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject handles POST /manage-projects/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approved bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad project id", err, "Invalid project.", "/manage-projects")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/manage-projects")
		return
	}
	decider, ok := h.callerID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "no caller id on decide project", nil, "Could not identify you.", "/manage-projects")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	note := strings.TrimSpace(r.FormValue("note"))
	switch err := h.Store.Decide(ctx, id, approved, decider, note); err {
	case nil:
		http.Redirect(w, r, "/manage-projects/"+id.Hex(), http.StatusSeeOther)
	case projectstore.ErrBadTransition:
		h.ErrLog.LogBadRequest(w, r, "decide non-submitted project", err, "Only submitted projects can be decided.", "/manage-projects/"+id.Hex())
	default:
		h.ErrLog.LogServerError(w, r, "decide project failed", err, "Could not record the decision.", "/manage-projects")
	}
}

// Delete handles POST /manage-projects/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad project id", err, "Invalid project.", "/manage-projects")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete project failed", err, "Could not delete the project.", "/manage-projects")
		return
	}
	if count == 0 {
		h.ErrLog.LogBadRequest(w, r, "delete frozen project", projectstore.ErrBadTransition,
			"Only draft or rejected projects can be deleted.", "/manage-projects/"+id.Hex())
		return
	}
	http.Redirect(w, r, "/manage-projects", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.Project, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad project id", err, "Invalid project.", "/manage-projects")
		return models.Project{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return p, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That project does not exist.", "/manage-projects")
	default:
		h.ErrLog.LogServerError(w, r, "load project failed", err, "Could not load the project.", "/manage-projects")
	}
	return models.Project{}, false
}

// callerID resolves the authenticated user's id from the credential the
// gate attached to the request.
func (h *Handler) callerID(r *http.Request) (primitive.ObjectID, bool) {
	cred, ok := auth.CurrentCredential(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(cred.SubjectID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, p models.Project, msg string, isEdit bool) {
	title := "New project"
	if isEdit {
		title = "Edit " + p.Name
	}
	templates.Render(w, r, "projects_form", formData{
		BaseVM:  viewdata.NewBaseVM(r, title, "/manage-projects"),
		Project: p,
		Error:   msg,
		IsEdit:  isEdit,
	})
}

func projectFromForm(r *http.Request) models.Project {
	return models.Project{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
}
