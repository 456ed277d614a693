package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/johnwards/menuseed/internal/account"
	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/domain"
)

// TypeUserExists is reported when the email is already registered.
const TypeUserExists = "user_already_exists"

// Handler serves the account API.
type Handler struct {
	svc *account.Service
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create handles POST /v1/account.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, api.NewValidationError("Invalid request body: "+err.Error(), corrID))
		return
	}

	user, err := h.svc.SignUp(r.Context(), account.SignUpForm{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, account.ErrMissingFields):
		api.WriteError(w, api.NewValidationError(err.Error(), corrID))
		return
	case errors.Is(err, domain.ErrConflict):
		api.WriteError(w, api.NewError(http.StatusConflict, TypeUserExists,
			"A user with the same email already exists.", corrID))
		return
	case err != nil:
		api.WriteStoreError(w, r, err, api.TypeNotFound)
		return
	}

	api.WriteJSON(w, http.StatusCreated, user)
}
