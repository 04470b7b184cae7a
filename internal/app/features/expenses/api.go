// internal/app/features/expenses/api.go
package expenses

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/corefield/opsdesk/internal/app/system/paging"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/webapi"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// APIList handles GET /api/expenses. A ?month=YYYY-MM parameter adds that
// month's total to the response.
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, query.Get(r, "category"), int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list expenses failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load expenses")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.Expense{}
	}

	resp := map[string]any{
		"expenses": rows,
		"has_next": hasNext,
	}
	if month := query.Get(r, "month"); month != "" {
		from, err := time.Parse("2006-01", month)
		if err != nil {
			webapi.WriteError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		total, err := h.Store.TotalForMonth(ctx, from, from.AddDate(0, 1, 0))
		if err != nil {
			h.Log.Error("api month total failed", zap.Error(err))
			webapi.WriteError(w, http.StatusInternalServerError, "could not compute month total")
			return
		}
		resp["month"] = month
		resp["month_total_cents"] = total
	}
	webapi.WriteJSON(w, http.StatusOK, resp)
}

type expenseRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	IncurredAt  string `json:"incurred_at"` // YYYY-MM-DD
	ReceiptRef  string `json:"receipt_ref"`
}

func (req expenseRequest) toModel() (models.Expense, string) {
	if req.Description == "" {
		return models.Expense{}, "description is required"
	}
	incurred, err := time.Parse("2006-01-02", req.IncurredAt)
	if err != nil {
		return models.Expense{}, "incurred_at must be YYYY-MM-DD"
	}
	return models.Expense{
		Category:    validCategory(req.Category),
		Description: req.Description,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		IncurredAt:  incurred,
		ReceiptRef:  req.ReceiptRef,
	}, ""
}

// APICreate handles POST /api/expenses.
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, msg := req.toModel()
	if msg != "" {
		webapi.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, e)
	if err != nil {
		h.Log.Error("api create expense failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create expense")
		return
	}
	webapi.WriteJSON(w, http.StatusCreated, created)
}

// APIGet handles GET /api/expenses/{id}.
func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, e)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "expense not found")
	default:
		h.Log.Error("api get expense failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load expense")
	}
}

// APIUpdate handles PUT /api/expenses/{id}.
func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, msg := req.toModel()
	if msg != "" {
		webapi.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.UpdateInfo(ctx, id, e); err != nil {
		h.Log.Error("api update expense failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update expense")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// APIDelete handles DELETE /api/expenses/{id}.
func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete expense failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete expense")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusNotFound, "expense not found")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
