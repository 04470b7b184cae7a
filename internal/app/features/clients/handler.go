// internal/app/features/clients/handler.go
package clients

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	clientstore "github.com/corefield/opsdesk/internal/app/store/clients"
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

type Handler struct {
	Store  *clientstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *clientstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Clients []models.Client
	Range   paging.Range
	HasNext bool
}

type formData struct {
	viewdata.BaseVM
	Client models.Client
	Error  string
	IsEdit bool
}

type viewData struct {
	viewdata.BaseVM
	Client models.Client
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list clients failed", err, "Could not load clients.", "/")
		return
	}
	hasNext := paging.Trim(&rows)

	templates.Render(w, r, "clients_list", listData{
		BaseVM:  viewdata.NewBaseVM(r, "Clients", "/"),
		Clients: rows,
		Range:   paging.ComputeRange(start, len(rows)),
		HasNext: hasNext,
	})
}

func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "clients_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "New client", "/clients"),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/clients")
		return
	}

	cl := clientFromForm(r)
	if cl.Name == "" {
		h.renderFormWithError(w, r, cl, "Name is required.", false)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, cl)
	switch err {
	case nil:
		http.Redirect(w, r, "/clients/"+created.ID.Hex(), http.StatusSeeOther)
	case clientstore.ErrDuplicateName:
		h.renderFormWithError(w, r, cl, "A client with this name already exists.", false)
	default:
		h.ErrLog.LogServerError(w, r, "create client failed", err, "Could not save the client.", "/clients")
	}
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	cl, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "clients_view", viewData{
		BaseVM: viewdata.NewBaseVM(r, cl.Name, "/clients"),
		Client: cl,
	})
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	cl, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "clients_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "Edit "+cl.Name, "/clients"),
		Client: cl,
		IsEdit: true,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad client id", err, "Invalid client.", "/clients")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/clients")
		return
	}

	cl := clientFromForm(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.UpdateInfo(ctx, id, cl); err {
	case nil:
		http.Redirect(w, r, "/clients/"+id.Hex(), http.StatusSeeOther)
	case clientstore.ErrDuplicateName:
		cl.ID = id
		h.renderFormWithError(w, r, cl, "A client with this name already exists.", true)
	default:
		h.ErrLog.LogServerError(w, r, "update client failed", err, "Could not save the client.", "/clients")
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad client id", err, "Invalid client.", "/clients")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "delete client failed", err, "Could not delete the client.", "/clients")
		return
	}
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.Client, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad client id", err, "Invalid client.", "/clients")
		return models.Client{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cl, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return cl, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That client does not exist.", "/clients")
	default:
		h.ErrLog.LogServerError(w, r, "load client failed", err, "Could not load the client.", "/clients")
	}
	return models.Client{}, false
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, cl models.Client, msg string, isEdit bool) {
	title := "New client"
	if isEdit {
		title = "Edit " + cl.Name
	}
	templates.Render(w, r, "clients_form", formData{
		BaseVM: viewdata.NewBaseVM(r, title, "/clients"),
		Client: cl,
		Error:  msg,
		IsEdit: isEdit,
	})
}

func clientFromForm(r *http.Request) models.Client {
	return models.Client{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Company: strings.TrimSpace(r.FormValue("company")),
		Address: strings.TrimSpace(r.FormValue("address")),
	}
}
