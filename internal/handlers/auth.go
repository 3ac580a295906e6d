package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vinsight/crm/internal/models"
)

// LoginRequest is the employee login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the authenticated employee record.
type LoginResponse struct {
	Employee models.Employee `json:"employee"`
}

// Login handles POST /login. Credentials are checked against the
// employee's bcrypt hash; unknown email and wrong password return the
// same error so the endpoint cannot be used to probe for accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		h.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	emp, err := h.data.EmployeeByEmail(r.Context(), email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	if emp == nil || emp.PasswordHash == "" {
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.data.Audit(r.Context(), models.AuditEntry{
		Actor:  emp.EmployeeID,
		Action: "login",
	})

	h.JSON(w, http.StatusOK, LoginResponse{Employee: *emp})
}
