package handlers

import (
	"net/http"

	"github.com/vinsight/crm/internal/models"
)

// Rebuild handles POST /admin/rebuild. It enqueues all three derived
// artifact rebuilds, seeded with a fresh primary snapshot when one is
// available so the worker does not have to re-read cache files.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var customers []models.Customer
	var orders []models.Order
	if primary := h.data.Primary(); primary != nil {
		var err error
		if customers, err = primary.ListCustomers(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("rebuild seed read failed, worker will scan the cache")
			customers = nil
		}
		if orders, err = primary.ListOrders(ctx); err != nil {
			orders = nil
		}
	}

	h.emitter.EmitRebuildIndex(ctx, customers)
	h.emitter.EmitRebuildSummary(ctx, customers, orders)
	h.emitter.EmitRebuildMarketing(ctx)

	h.data.Audit(ctx, models.AuditEntry{Action: "admin.rebuild"})

	h.JSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"jobs":    []string{"rebuild-index", "rebuild-summary", "rebuild-marketing"},
	})
}
