// internal/app/features/invoices/handler.go
package invoices

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	clientstore "github.com/corefield/opsdesk/internal/app/store/clients"
	invoicestore "github.com/corefield/opsdesk/internal/app/store/invoices"
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
	Store   *invoicestore.Store
	Clients *clientstore.Store
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(store *invoicestore.Store, clients *clientstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Clients: clients, ErrLog: errLog, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Invoices []models.Invoice
	Names    map[primitive.ObjectID]string
	Status   string
	Range    paging.Range
	HasNext  bool
}

type formData struct {
	viewdata.BaseVM
	Invoice models.Invoice
	Clients []models.Client
	Error   string
	IsEdit  bool
}

type viewData struct {
	viewdata.BaseVM
	Invoice    models.Invoice
	ClientName string
	IsDraft    bool
	IsSent     bool
}

// List handles GET /invoices, optionally filtered by ?status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	status := query.Get(r, "status")

	rows, err := h.Store.List(ctx, status, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list invoices failed", err, "Could not load invoices.", "/")
		return
	}
	hasNext := paging.Trim(&rows)

	templates.Render(w, r, "invoices_list", listData{
		BaseVM:   viewdata.NewBaseVM(r, "Invoices", "/"),
		Invoices: rows,
		Names:    h.clientNames(ctx),
		Status:   status,
		Range:    paging.ComputeRange(start, len(rows)),
		HasNext:  hasNext,
	})
}

// New handles GET /invoices/new.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	clients, err := h.Clients.List(ctx, 0, 500)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list clients for invoice form failed", err, "Could not load the form.", "/invoices")
		return
	}
	templates.Render(w, r, "invoices_form", formData{
		BaseVM: viewdata.NewBaseVM(r, "New invoice", "/invoices"),
		Invoice: models.Invoice{
			Items: []models.InvoiceItem{{Quantity: 1}},
			DueAt: time.Now().UTC().AddDate(0, 1, 0),
		},
		Clients: clients,
	})
}

// Create handles POST /invoices/new.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/invoices")
		return
	}

	inv, formErr := invoiceFromForm(r)
	if formErr != "" {
		h.renderFormWithError(w, r, inv, formErr, false)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, inv)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create invoice failed", err, "Could not save the invoice.", "/invoices")
		return
	}
	http.Redirect(w, r, "/invoices/"+created.ID.Hex(), http.StatusSeeOther)
}

// View handles GET /invoices/{id}.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	name := inv.ClientID.Hex()
	if cl, err := h.Clients.GetByID(ctx, inv.ClientID); err == nil {
		name = cl.Name
	}
	templates.Render(w, r, "invoices_view", viewData{
		BaseVM:     viewdata.NewBaseVM(r, "Invoice #"+strconv.FormatInt(inv.Number, 10), "/invoices"),
		Invoice:    inv,
		ClientName: name,
		IsDraft:    inv.Status == models.InvoiceDraft,
		IsSent:     inv.Status == models.InvoiceSent,
	})
}

// Edit handles GET /invoices/{id}/edit. Only drafts are editable.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if inv.Status != models.InvoiceDraft {
		h.ErrLog.LogBadRequest(w, r, "edit non-draft invoice", invoicestore.ErrNotEditable,
			"Sent invoices cannot be edited.", "/invoices/"+inv.ID.Hex())
		return
	}
	templates.Render(w, r, "invoices_form", formData{
		BaseVM:  viewdata.NewBaseVM(r, "Edit invoice #"+strconv.FormatInt(inv.Number, 10), "/invoices"),
		Invoice: inv,
		IsEdit:  true,
	})
}

// Update handles POST /invoices/{id}/edit.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad invoice id", err, "Invalid invoice.", "/invoices")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/invoices")
		return
	}

	items := itemsFromForm(r)
	dueAt, err := time.Parse("2006-01-02", r.FormValue("due_at"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad due date", err, "Due date must be YYYY-MM-DD.", "/invoices")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.UpdateItems(ctx, id, items, dueAt); err {
	case nil:
		http.Redirect(w, r, "/invoices/"+id.Hex(), http.StatusSeeOther)
	case invoicestore.ErrNotEditable:
		h.ErrLog.LogBadRequest(w, r, "update non-draft invoice", err, "Sent invoices cannot be edited.", "/invoices/"+id.Hex())
	default:
		h.ErrLog.LogServerError(w, r, "update invoice failed", err, "Could not save the invoice.", "/invoices")
	}
}

// Send handles POST /invoices/{id}/send. The invoice leaves draft and
// its line items freeze.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad invoice id", err, "Invalid invoice.", "/invoices")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.Send(ctx, id); err {
	case nil:
		http.Redirect(w, r, "/invoices/"+id.Hex(), http.StatusSeeOther)
	case mongo.ErrNoDocuments:
		h.ErrLog.LogBadRequest(w, r, "send non-draft invoice", err, "Only draft invoices can be sent.", "/invoices/"+id.Hex())
	default:
		h.ErrLog.LogServerError(w, r, "send invoice failed", err, "Could not send the invoice.", "/invoices")
	}
}

// MarkPaid handles POST /invoices/{id}/paid.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad invoice id", err, "Invalid invoice.", "/invoices")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.SetStatus(ctx, id, models.InvoiceSent, models.InvoicePaid); err {
	case nil:
		http.Redirect(w, r, "/invoices/"+id.Hex(), http.StatusSeeOther)
	case mongo.ErrNoDocuments:
		h.ErrLog.LogBadRequest(w, r, "mark unpaid invoice", err, "Only sent invoices can be marked paid.", "/invoices/"+id.Hex())
	default:
		h.ErrLog.LogServerError(w, r, "mark invoice paid failed", err, "Could not update the invoice.", "/invoices")
	}
}

// Delete handles POST /invoices/{id}/delete. The store only removes
// drafts, so a zero count means the invoice was already sent.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad invoice id", err, "Invalid invoice.", "/invoices")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete invoice failed", err, "Could not delete the invoice.", "/invoices")
		return
	}
	if count == 0 {
		h.ErrLog.LogBadRequest(w, r, "delete non-draft invoice", invoicestore.ErrNotEditable,
			"Only draft invoices can be deleted.", "/invoices/"+id.Hex())
		return
	}
	http.Redirect(w, r, "/invoices", http.StatusSeeOther)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.Invoice, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad invoice id", err, "Invalid invoice.", "/invoices")
		return models.Invoice{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		return inv, true
	case mongo.ErrNoDocuments:
		h.ErrLog.LogNotFound(w, r, "That invoice does not exist.", "/invoices")
	default:
		h.ErrLog.LogServerError(w, r, "load invoice failed", err, "Could not load the invoice.", "/invoices")
	}
	return models.Invoice{}, false
}

func (h *Handler) clientNames(ctx context.Context) map[primitive.ObjectID]string {
	names := make(map[primitive.ObjectID]string)
	clients, err := h.Clients.List(ctx, 0, 500)
	if err != nil {
		h.Log.Warn("resolve client names failed", zap.Error(err))
		return names
	}
	for _, cl := range clients {
		names[cl.ID] = cl.Name
	}
	return names
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, inv models.Invoice, msg string, isEdit bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	clients, _ := h.Clients.List(ctx, 0, 500)
	title := "New invoice"
	if isEdit {
		title = "Edit invoice #" + strconv.FormatInt(inv.Number, 10)
	}
	templates.Render(w, r, "invoices_form", formData{
		BaseVM:  viewdata.NewBaseVM(r, title, "/invoices"),
		Invoice: inv,
		Clients: clients,
		Error:   msg,
		IsEdit:  isEdit,
	})
}

// itemsFromForm reads the parallel item field arrays. Rows with an
// empty description are skipped so trailing blank rows are harmless.
func itemsFromForm(r *http.Request) []models.InvoiceItem {
	descs := r.PostForm["item_description"]
	qtys := r.PostForm["item_quantity"]
	units := r.PostForm["item_unit_cents"]

	var items []models.InvoiceItem
	for i, desc := range descs {
		desc = strings.TrimSpace(desc)
		if desc == "" {
			continue
		}
		var qty int
		var unit int64
		if i < len(qtys) {
			qty, _ = strconv.Atoi(qtys[i])
		}
		if i < len(units) {
			unit, _ = strconv.ParseInt(units[i], 10, 64)
		}
		if qty < 1 {
			qty = 1
		}
		items = append(items, models.InvoiceItem{
			Description: desc,
			Quantity:    qty,
			UnitCents:   unit,
		})
	}
	return items
}

func invoiceFromForm(r *http.Request) (models.Invoice, string) {
	inv := models.Invoice{
		Items:    itemsFromForm(r),
		Currency: strings.TrimSpace(r.FormValue("currency")),
	}
	clientID, err := primitive.ObjectIDFromHex(r.FormValue("client_id"))
	if err != nil {
		return inv, "Choose a client."
	}
	inv.ClientID = clientID
	if len(inv.Items) == 0 {
		return inv, "Add at least one line item."
	}
	dueAt, err := time.Parse("2006-01-02", r.FormValue("due_at"))
	if err != nil {
		return inv, "Due date must be YYYY-MM-DD."
	}
	inv.DueAt = dueAt
	return inv, ""
}
