// internal/app/features/expenses/handler.go
package expenses

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	expensestore "github.com/corefield/opsdesk/internal/app/store/expenses"
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

// Categories an expense can be filed under.
var Categories = []string{"rent", "utilities", "supplies", "travel", "other"}

type Handler struct {
	Store  *expensestore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *expensestore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Expenses   []models.Expense
	Categories []string
	Category   string
	MonthTotal int64
	Month      string
	Range      paging.Range
	HasNext    bool
}

type formData struct {
	viewdata.BaseVM
	Expense    models.Expense
	Categories []string
	Error      string
	IsEdit     bool
}

type viewData struct {
	viewdata.BaseVM
	Expense models.Expense
}

// List handles GET /expenses. The header shows the running total for the
// current month alongside the paged list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	category := query.Get(r, "category")

	rows, err := h.Store.List(ctx, category, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list expenses failed", err, "Could not load expenses.", "/")
		return
	}
	hasNext := paging.Trim(&rows)

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	total, err := h.Store.TotalForMonth(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		h.Log.Warn("month total failed", zap.Error(err))
	}

	templates.Render(w, r, "expenses_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Expenses", "/"),
		Expenses:   rows,
		Categories: Categories,
		Category:   category,
		MonthTotal: total,
		Month:      from.Format("January 2006"),
		Range:      paging.ComputeRange(start, len(rows)),
		HasNext:    hasNext,
	})
}

// New handles GET /expenses/new.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "expenses_form", formData{
		BaseVM:     viewdata.NewBaseVM(r, "New expense", "/expenses"),
		Expense:    models.Expense{IncurredAt: time.Now().UTC()},
		Categories: Categories,
	})
}

// Create handles POST /expenses/new.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/expenses")
		return
	}

	e := expenseFromForm(r)
	if e.Description == "" {
		h.renderFormWithError(w, r, e, "Description is required.", false)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, e)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create expense failed", err, "Could not save the expense.", "/expenses")
		return
	}
	http.Redirect(w, r, "/expenses/"+created.ID.Hex(), http.StatusSeeOther)
}

// View handles GET /expenses/{id}.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "expenses_view", viewData{
		BaseVM:  viewdata.NewBaseVM(r, "Expense", "/expenses"),
		Expense: e,
	})
}

// Edit handles GET /expenses/{id}/edit.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "expenses_form", formData{
		BaseVM:     viewdata.NewBaseVM(r, "Edit expense", "/expenses"),
		Expense:    e,
		Categories: Categories,
		IsEdit:     true,
	})
}

// Update handles POST /expenses/{id}/edit.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad expense id", err, "Invalid expense.", "/expenses")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/expenses")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateInfo(ctx, id, expenseFromForm(r)); err != nil {
		h.ErrLog.LogServerError(w, r, "update expense failed", err, "Could not save the expense.", "/expenses")
		return
	}
	http.Redirect(w, r, "/expenses/"+id.Hex(), http.StatusSeeOther)
}

// Delete handles POST /expenses/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad expense id", err, "Invalid expense.", "/expenses")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "delete expense failed", err, "Could not delete the expense.", "/expenses")
		return
	}
	http.Redirect(w, r, "/expenses", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.Expense, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad expense id", err, "Invalid expense.", "/expenses")
		return models.Expense{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return e, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That expense does not exist.", "/expenses")
	default:
		h.ErrLog.LogServerError(w, r, "load expense failed", err, "Could not load the expense.", "/expenses")
	}
	return models.Expense{}, false
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, e models.Expense, msg string, isEdit bool) {
	title := "New expense"
	if isEdit {
		title = "Edit expense"
	}
	templates.Render(w, r, "expenses_form", formData{
		BaseVM:     viewdata.NewBaseVM(r, title, "/expenses"),
		Expense:    e,
		Categories: Categories,
		Error:      msg,
		IsEdit:     isEdit,
	})
}

func expenseFromForm(r *http.Request) models.Expense {
	amount, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue("amount_cents")), 10, 64)
	incurred, err := time.Parse("2006-01-02", r.FormValue("incurred_at"))
	if err != nil {
		incurred = time.Now().UTC()
	}
	return models.Expense{
		Category:    validCategory(r.FormValue("category")),
		Description: strings.TrimSpace(r.FormValue("description")),
		AmountCents: amount,
		Currency:    strings.TrimSpace(r.FormValue("currency")),
		IncurredAt:  incurred,
		ReceiptRef:  strings.TrimSpace(r.FormValue("receipt_ref")),
	}
}

func validCategory(c string) string {
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return "other"
}
