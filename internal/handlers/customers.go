package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vinsight/crm/internal/models"
)

// ListCustomers handles GET /customers. The default response is the
// lightweight index projection; ?full=1 returns complete aggregates.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("full") == "1" {
		customers, err := h.data.Customers(r.Context())
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "failed to load customers")
			return
		}
		h.JSON(w, http.StatusOK, map[string]any{"total": len(customers), "data": customers})
		return
	}

	rows, err := h.data.CustomerIndex(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load customer index")
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"total": len(rows), "data": rows})
}

// GetCustomer handles GET /customers/{id}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.data.Customer(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load customer")
		return
	}
	if c == nil {
		h.Error(w, http.StatusNotFound, "customer not found")
		return
	}

	if h.data.Stale(id, h.cacheMaxAge) {
		w.Header().Set("X-Cache-Stale", "true")
	}
	h.JSON(w, http.StatusOK, c)
}

// UpsertCustomer handles POST /customers. New customers without an ID
// get a generated one. The response reflects the committed aggregate;
// cache propagation happens asynchronously.
func (h *Handler) UpsertCustomer(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created := false
	if c.CustomerID == "" {
		c.CustomerID = "CUS-" + uuid.NewString()
		created = true
	}

	if err := h.data.SaveCustomer(r.Context(), &c); err != nil {
		h.logger.Error().Err(err).Str("customer_id", c.CustomerID).Msg("customer upsert failed")
		h.Error(w, http.StatusInternalServerError, "failed to save customer")
		return
	}

	action := "customer.update"
	status := http.StatusOK
	if created {
		action = "customer.create"
		status = http.StatusCreated
	}
	h.data.Audit(r.Context(), models.AuditEntry{
		Action: action,
		Target: c.CustomerID,
	})

	h.JSON(w, status, &c)
}
