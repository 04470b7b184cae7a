// internal/app/features/payroll/handler.go
package payroll

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	employeestore "github.com/corefield/opsdesk/internal/app/store/employees"
	payrollstore "github.com/corefield/opsdesk/internal/app/store/payroll"
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
	Store     *payrollstore.Store
	Employees *employeestore.Store
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(store *payrollstore.Store, employees *employeestore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Employees: employees, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Entries []models.PayrollEntry
	Names   map[primitive.ObjectID]string
	Period  string
	Range   paging.Range
	HasNext bool
}

type formData struct {
	viewdata.BaseVM
	Entry     models.PayrollEntry
	Employees []models.Employee
	Error     string
	IsEdit    bool
}

type viewData struct {
	viewdata.BaseVM
	Entry        models.PayrollEntry
	EmployeeName string
}

// List handles GET /payroll. With ?period=YYYY-MM it shows that period
// only; otherwise it pages through all entries, newest period first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	period := strings.TrimSpace(query.Get(r, "period"))

	var (
		rows    []models.PayrollEntry
		hasNext bool
		err     error
	)
	if period != "" {
		rows, err = h.Store.ListByPeriod(ctx, period)
	} else {
		rows, err = h.Store.List(ctx, int64(start-1), paging.LimitPlusOne())
		if err == nil {
			hasNext = paging.Trim(&rows)
		}
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list payroll failed", err, "Could not load payroll entries.", "/")
		return
	}

	templates.Render(w, r, "payroll_list", listData{
		BaseVM:  viewdata.NewBaseVM(r, "Payroll", "/"),
		Entries: rows,
		Names:   h.employeeNames(ctx, rows),
		Period:  period,
		Range:   paging.ComputeRange(start, len(rows)),
		HasNext: hasNext,
	})
}

// New handles GET /payroll/new.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	emps, err := h.Employees.List(ctx, "", 0, 500)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list employees for payroll form failed", err, "Could not load the form.", "/payroll")
		return
	}
	templates.Render(w, r, "payroll_form", formData{
		BaseVM:    viewdata.NewBaseVM(r, "New payroll entry", "/payroll"),
		Entry:     models.PayrollEntry{Period: time.Now().UTC().Format("2006-01")},
		Employees: emps,
	})
}

// Create handles POST /payroll/new.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/payroll")
		return
	}

	entry, formErr := entryFromForm(r)
	if formErr != "" {
		h.renderFormWithError(w, r, entry, formErr, false)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, entry)
	switch err {
	case nil:
		http.Redirect(w, r, "/payroll/"+created.ID.Hex(), http.StatusSeeOther)
	case payrollstore.ErrDuplicateEntry:
		h.renderFormWithError(w, r, entry, "This employee already has an entry for that period.", false)
	default:
		h.ErrLog.LogServerError(w, r, "create payroll entry failed", err, "Could not save the entry.", "/payroll")
	}
}

// View handles GET /payroll/{id}.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.load(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	name := entry.EmployeeID.Hex()
	if emp, err := h.Employees.GetByID(ctx, entry.EmployeeID); err == nil {
		name = emp.FullName
	}
	templates.Render(w, r, "payroll_view", viewData{
		BaseVM:       viewdata.NewBaseVM(r, "Payroll "+entry.Period, "/payroll"),
		Entry:        entry,
		EmployeeName: name,
	})
}

// Edit handles GET /payroll/{id}/edit. Only the amounts and the paid
// flag can change; employee and period are fixed at creation.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "payroll_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "Edit payroll "+entry.Period, "/payroll"),
		Entry:  entry,
		IsEdit: true,
	})
}

// Update handles POST /payroll/{id}/edit.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad payroll id", err, "Invalid payroll entry.", "/payroll")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/payroll")
		return
	}

	gross := parseCents(r.FormValue("gross_cents"))
	tax := parseCents(r.FormValue("tax_cents"))
	net := parseCents(r.FormValue("net_cents"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateAmounts(ctx, id, gross, tax, net); err != nil {
		h.ErrLog.LogServerError(w, r, "update payroll entry failed", err, "Could not save the entry.", "/payroll")
		return
	}
	if r.FormValue("paid") == "on" {
		entry, err := h.Store.GetByID(ctx, id)
		if err == nil && entry.PaidAt == nil {
			if err := h.Store.MarkPaid(ctx, id, time.Now()); err != nil {
				h.ErrLog.LogServerError(w, r, "mark payroll entry paid failed", err, "Could not mark the entry paid.", "/payroll")
				return
			}
		}
	}
	http.Redirect(w, r, "/payroll/"+id.Hex(), http.StatusSeeOther)
}

// Delete handles POST /payroll/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad payroll id", err, "Invalid payroll entry.", "/payroll")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "delete payroll entry failed", err, "Could not delete the entry.", "/payroll")
		return
	}
	http.Redirect(w, r, "/payroll", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.PayrollEntry, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad payroll id", err, "Invalid payroll entry.", "/payroll")
		return models.PayrollEntry{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entry, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return entry, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That payroll entry does not exist.", "/payroll")
	default:
		h.ErrLog.LogServerError(w, r, "load payroll entry failed", err, "Could not load the entry.", "/payroll")
	}
	return models.PayrollEntry{}, false
}

// employeeNames resolves the names shown on the list page. A lookup
// failure degrades to showing raw ids rather than failing the page.
func (h *Handler) employeeNames(ctx context.Context, rows []models.PayrollEntry) map[primitive.ObjectID]string {
	names := make(map[primitive.ObjectID]string, len(rows))
	emps, err := h.Employees.List(ctx, "", 0, 500)
	if err != nil {
		h.Log.Warn("resolve employee names failed", zap.Error(err))
		return names
	}
	for _, e := range emps {
		names[e.ID] = e.FullName
	}
	return names
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, entry models.PayrollEntry, msg string, isEdit bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	emps, _ := h.Employees.List(ctx, "", 0, 500)
	title := "New payroll entry"
	if isEdit {
		title = "Edit payroll " + entry.Period
	}
	templates.Render(w, r, "payroll_form", formData{
		BaseVM:    viewdata.NewBaseVM(r, title, "/payroll"),
		Entry:     entry,
		Employees: emps,
		Error:     msg,
		IsEdit:    isEdit,
	})
}

func entryFromForm(r *http.Request) (models.PayrollEntry, string) {
	entry := models.PayrollEntry{
		Period:     strings.TrimSpace(r.FormValue("period")),
		GrossCents: parseCents(r.FormValue("gross_cents")),
		TaxCents:   parseCents(r.FormValue("tax_cents")),
		NetCents:   parseCents(r.FormValue("net_cents")),
		Currency:   strings.TrimSpace(r.FormValue("currency")),
	}
	empID, err := primitive.ObjectIDFromHex(r.FormValue("employee_id"))
	if err != nil {
		return entry, "Choose an employee."
	}
	entry.EmployeeID = empID
	if !validPeriod(entry.Period) {
		return entry, "Period must be YYYY-MM."
	}
	return entry, ""
}

func parseCents(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func validPeriod(p string) bool {
	_, err := time.Parse("2006-01", p)
	return err == nil
}
