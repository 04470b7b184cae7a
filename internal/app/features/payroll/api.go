// internal/app/features/payroll/api.go
package payroll

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	payrollstore "github.com/corefield/opsdesk/internal/app/store/payroll"
	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/webapi"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// APIList handles GET /api/payroll.
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list payroll failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load payroll entries")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.PayrollEntry{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"entries":  rows,
		"has_next": hasNext,
	})
}

// APIListByPeriod handles GET /api/payroll/period/{period}.
func (h *Handler) APIListByPeriod(w http.ResponseWriter, r *http.Request) {
	period := chi.URLParam(r, "period")
	if !validPeriod(period) {
		webapi.WriteError(w, http.StatusBadRequest, "period must be YYYY-MM")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Store.ListByPeriod(ctx, period)
	if err != nil {
		h.Log.Error("api list payroll by period failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load payroll entries")
		return
	}
	if rows == nil {
		rows = []models.PayrollEntry{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"period":  period,
		"entries": rows,
	})
}

type entryRequest struct {
	EmployeeID string `json:"employee_id"`
	Period     string `json:"period"`
	GrossCents int64  `json:"gross_cents"`
	TaxCents   int64  `json:"tax_cents"`
	NetCents   int64  `json:"net_cents"`
	Currency   string `json:"currency"`
	Paid       bool   `json:"paid"`
}

// APICreate handles POST /api/payroll.
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	empID, err := primitive.ObjectIDFromHex(req.EmployeeID)
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid employee_id")
		return
	}
	if !validPeriod(req.Period) {
		webapi.WriteError(w, http.StatusBadRequest, "period must be YYYY-MM")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, models.PayrollEntry{
		EmployeeID: empID,
		Period:     req.Period,
		GrossCents: req.GrossCents,
		TaxCents:   req.TaxCents,
		NetCents:   req.NetCents,
		Currency:   req.Currency,
	})
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusCreated, created)
	case payrollstore.ErrDuplicateEntry:
		webapi.WriteError(w, http.StatusConflict, "an entry for this employee and period already exists")
	default:
		h.Log.Error("api create payroll entry failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create entry")
	}
}

// APIGet handles GET /api/payroll/{id}.
func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entry, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, entry)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "entry not found")
	default:
		h.Log.Error("api get payroll entry failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load entry")
	}
}

// APIUpdate handles PUT /api/payroll/{id}. Amounts are replaced; a true
// paid flag stamps the payment instant if the entry is still unpaid.
func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entry, err := h.Store.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		webapi.WriteError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		h.Log.Error("api load payroll entry failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update entry")
		return
	}

	if err := h.Store.UpdateAmounts(ctx, id, req.GrossCents, req.TaxCents, req.NetCents); err != nil {
		h.Log.Error("api update payroll entry failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update entry")
		return
	}
	if req.Paid && entry.PaidAt == nil {
		if err := h.Store.MarkPaid(ctx, id, time.Now()); err != nil {
			h.Log.Error("api mark payroll entry paid failed", zap.Error(err))
			webapi.WriteError(w, http.StatusInternalServerError, "could not mark entry paid")
			return
		}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// APIDelete handles DELETE /api/payroll/{id}.
func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete payroll entry failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete entry")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusNotFound, "entry not found")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
