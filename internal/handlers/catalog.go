package handlers

import "net/http"

// ListEmployees handles GET /employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.data.Employees(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load employees")
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"total": len(employees), "data": employees})
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.data.Products(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"total": len(products), "data": products})
}

// ListCampaigns handles GET /campaigns.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.data.Campaigns(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load campaigns")
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"total": len(campaigns), "data": campaigns})
}
