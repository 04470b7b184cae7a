// internal/app/features/employees/handler.go
package employees

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	employeestore "github.com/corefield/opsdesk/internal/app/store/employees"
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
	Store  *employeestore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *employeestore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Employees  []models.Employee
	Department string
	Range      paging.Range
	HasNext    bool
}

type formData struct {
	viewdata.BaseVM
	Employee models.Employee
	Error    string
	IsEdit   bool
}

type viewData struct {
	viewdata.BaseVM
	Employee models.Employee
}

// List handles GET /employees.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	dept := query.Get(r, "department")

	rows, err := h.Store.List(ctx, dept, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list employees failed", err, "Could not load employees.", "/")
		return
	}
	hasNext := paging.Trim(&rows)

	templates.Render(w, r, "employees_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Employees", "/"),
		Employees:  rows,
		Department: dept,
		Range:      paging.ComputeRange(start, len(rows)),
		HasNext:    hasNext,
	})
}

// New handles GET /employees/new.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "employees_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "New employee", "/employees"),
	})
}

// Create handles POST /employees/new.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/employees")
		return
	}

	emp := employeeFromForm(r)
	if emp.FullName == "" || emp.Email == "" {
		h.renderFormWithError(w, r, emp, "Name and email are required.", false)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, emp)
	switch err {
	case nil:
		http.Redirect(w, r, "/employees/"+created.ID.Hex(), http.StatusSeeOther)
	case employeestore.ErrDuplicateEmail:
		h.renderFormWithError(w, r, emp, "An employee with this email already exists.", false)
	default:
		h.ErrLog.LogServerError(w, r, "create employee failed", err, "Could not save the employee.", "/employees")
	}
}

// View handles GET /employees/{id}.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "employees_view", viewData{
		BaseVM:   viewdata.NewBaseVM(r, emp.FullName, "/employees"),
		Employee: emp,
	})
}

// Edit handles GET /employees/{id}/edit.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "employees_form", formData{
		BaseVM:   viewdata.NewBaseVM(r, "Edit "+emp.FullName, "/employees"),
		Employee: emp,
		IsEdit:   true,
	})
}

// Update handles POST /employees/{id}/edit.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad employee id", err, "Invalid employee.", "/employees")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/employees")
		return
	}

	emp := employeeFromForm(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.UpdateInfo(ctx, id, emp); err {
	case nil:
		http.Redirect(w, r, "/employees/"+id.Hex(), http.StatusSeeOther)
	case employeestore.ErrDuplicateEmail:
		emp.ID = id
		h.renderFormWithError(w, r, emp, "An employee with this email already exists.", true)
	default:
		h.ErrLog.LogServerError(w, r, "update employee failed", err, "Could not save the employee.", "/employees")
	}
}

// Delete handles POST /employees/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad employee id", err, "Invalid employee.", "/employees")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "delete employee failed", err, "Could not delete the employee.", "/employees")
		return
	}
	http.Redirect(w, r, "/employees", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.Employee, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad employee id", err, "Invalid employee.", "/employees")
		return models.Employee{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	emp, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return emp, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That employee does not exist.", "/employees")
	default:
		h.ErrLog.LogServerError(w, r, "load employee failed", err, "Could not load the employee.", "/employees")
	}
	return models.Employee{}, false
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, emp models.Employee, msg string, isEdit bool) {
	title := "New employee"
	if isEdit {
		title = "Edit " + emp.FullName
	}
	templates.Render(w, r, "employees_form", formData{
		BaseVM:   viewdata.NewBaseVM(r, title, "/employees"),
		Employee: emp,
		Error:    msg,
		IsEdit:   isEdit,
	})
}

func employeeFromForm(r *http.Request) models.Employee {
	hired, _ := time.Parse("2006-01-02", r.FormValue("hired_at"))
	return models.Employee{
		FullName:   strings.TrimSpace(r.FormValue("full_name")),
		Email:      strings.TrimSpace(r.FormValue("email")),
		Title:      strings.TrimSpace(r.FormValue("title")),
		Department: strings.TrimSpace(r.FormValue("department")),
		Status:     r.FormValue("status"),
		HiredAt:    hired,
	}
}
