package admin

import (
	"net/http"
)

// RegisterRoutes registers the admin endpoints on the mux.
func RegisterRoutes(mux *http.ServeMux, runner Runner, load Loader) {
	h := NewHandler(runner, load)

	mux.HandleFunc("POST /_menuseed/seed", h.Seed)
	mux.HandleFunc("GET /_menuseed/runs/last", h.LastRun)
}
