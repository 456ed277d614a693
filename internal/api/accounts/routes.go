package accounts

import (
	"net/http"

	"github.com/johnwards/menuseed/internal/account"
)

// RegisterRoutes adds the sign-up endpoint to the given mux.
func RegisterRoutes(mux *http.ServeMux, svc *account.Service) {
	h := &Handler{svc: svc}

	mux.HandleFunc("POST /v1/account", h.Create)
}
