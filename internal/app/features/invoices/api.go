// internal/app/features/invoices/api.go
package invoices

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	invoicestore "github.com/corefield/opsdesk/internal/app/store/invoices"
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

// APIList handles GET /api/invoices.
func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	rows, err := h.Store.List(ctx, query.Get(r, "status"), int64(start-1), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("api list invoices failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load invoices")
		return
	}
	hasNext := paging.Trim(&rows)
	if rows == nil {
		rows = []models.Invoice{}
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]any{
		"invoices": rows,
		"has_next": hasNext,
	})
}

type invoiceRequest struct {
	ClientID string               `json:"client_id"`
	Items    []models.InvoiceItem `json:"items"`
	Currency string               `json:"currency"`
	DueAt    string               `json:"due_at"` // YYYY-MM-DD
}

// APICreate handles POST /api/invoices.
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid client_id")
		return
	}
	if len(req.Items) == 0 {
		webapi.WriteError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	dueAt, err := time.Parse("2006-01-02", req.DueAt)
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "due_at must be YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, models.Invoice{
		ClientID: clientID,
		Items:    req.Items,
		Currency: req.Currency,
		DueAt:    dueAt,
	})
	if err != nil {
		h.Log.Error("api create invoice failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not create invoice")
		return
	}
	webapi.WriteJSON(w, http.StatusCreated, created)
}

// APIGet handles GET /api/invoices/{id}.
func (h *Handler) APIGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.Store.GetByID(ctx, id)
	switch err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, inv)
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusNotFound, "invoice not found")
	default:
		h.Log.Error("api get invoice failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not load invoice")
	}
}

// APIUpdate handles PUT /api/invoices/{id}. Only drafts accept item
// changes.
func (h *Handler) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		webapi.WriteError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	dueAt, err := time.Parse("2006-01-02", req.DueAt)
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "due_at must be YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.UpdateItems(ctx, id, req.Items, dueAt); err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case invoicestore.ErrNotEditable:
		webapi.WriteError(w, http.StatusConflict, "only draft invoices can be edited")
	default:
		h.Log.Error("api update invoice failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update invoice")
	}
}

// APISend handles POST /api/invoices/{id}/send.
func (h *Handler) APISend(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.Send(ctx, id); err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": models.InvoiceSent})
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusConflict, "only draft invoices can be sent")
	default:
		h.Log.Error("api send invoice failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not send invoice")
	}
}

// APIMarkPaid handles POST /api/invoices/{id}/paid.
func (h *Handler) APIMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Store.SetStatus(ctx, id, models.InvoiceSent, models.InvoicePaid); err {
	case nil:
		webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": models.InvoicePaid})
	case mongo.ErrNoDocuments:
		webapi.WriteError(w, http.StatusConflict, "only sent invoices can be marked paid")
	default:
		h.Log.Error("api mark invoice paid failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not update invoice")
	}
}

// APIDelete handles DELETE /api/invoices/{id}.
func (h *Handler) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webapi.WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.Log.Error("api delete invoice failed", zap.Error(err))
		webapi.WriteError(w, http.StatusInternalServerError, "could not delete invoice")
		return
	}
	if count == 0 {
		webapi.WriteError(w, http.StatusConflict, "only draft invoices can be deleted")
		return
	}
	webapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
