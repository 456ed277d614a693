package admin

import (
	"context"
	"net/http"
	"sync"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/dataset"
	"github.com/johnwards/menuseed/internal/seed"
)

// Runner performs a seed run.
type Runner interface {
	Seed(ctx context.Context, ds *dataset.Dataset) seed.Result
}

// Loader returns the dataset to seed with.
type Loader func() (*dataset.Dataset, error)

// Handler serves the admin API at /_menuseed/.
type Handler struct {
	runner Runner
	load   Loader

	running sync.Mutex

	mu   sync.Mutex
	last *RunResponse
}

// NewHandler creates a Handler.
func NewHandler(runner Runner, load Loader) *Handler {
	return &Handler{runner: runner, load: load}
}

// Counts mirrors seed.Counts in the JSON response.
type Counts struct {
	Categories     int `json:"categories"`
	Customizations int `json:"customizations"`
	MenuItems      int `json:"menuItems"`
	Links          int `json:"links"`
	Images         int `json:"images"`
}

// RunResponse describes a finished seed run.
type RunResponse struct {
	Success        bool   `json:"success"`
	StepsCompleted int    `json:"stepsCompleted"`
	FailedStep     string `json:"failedStep,omitempty"`
	Error          string `json:"error,omitempty"`
	Counts         Counts `json:"counts"`
	ClearFailures  int    `json:"clearFailures"`
	DurationMs     int64  `json:"durationMs"`
}

func newRunResponse(res seed.Result) *RunResponse {
	out := &RunResponse{
		Success:        res.Success,
		StepsCompleted: res.StepsCompleted,
		FailedStep:     res.FailedStep,
		Counts: Counts{
			Categories:     res.Counts.Categories,
			Customizations: res.Counts.Customizations,
			MenuItems:      res.Counts.MenuItems,
			Links:          res.Counts.Links,
			Images:         res.Counts.Images,
		},
		ClearFailures: res.ClearFailures,
		DurationMs:    res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// Seed wipes and repopulates the backend. Only one run may be in flight;
// a concurrent request gets 409. The run is not cancelled when the client
// disconnects.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	if !h.running.TryLock() {
		api.WriteError(w, api.NewConflictError("a seed run is already in progress", corrID))
		return
	}
	defer h.running.Unlock()

	ds, err := h.load()
	if err != nil {
		api.WriteError(w, api.NewError(http.StatusInternalServerError, api.TypeServerError,
			"failed to load dataset: "+err.Error(), corrID))
		return
	}

	out := newRunResponse(h.runner.Seed(context.WithoutCancel(r.Context()), ds))

	h.mu.Lock()
	h.last = out
	h.mu.Unlock()

	status := http.StatusOK
	if !out.Success {
		status = http.StatusInternalServerError
	}
	api.WriteJSON(w, status, out)
}

// LastRun returns the outcome of the most recent seed run.
func (h *Handler) LastRun(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		api.WriteError(w, api.NewNotFoundError(api.TypeNotFound, "no seed run yet", api.CorrelationID(r.Context())))
		return
	}
	api.WriteJSON(w, http.StatusOK, last)
}
