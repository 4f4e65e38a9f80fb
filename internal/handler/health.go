package handler

import (
	"context"
	"net/http"
)

// Pinger is the slice of the storage layer the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process liveness plus storage reachability.
type HealthHandler struct {
	db  Pinger
	env string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db Pinger, env string) *HealthHandler {
	return &HealthHandler{db: db, env: env}
}

// HandleHealth answers 200 {ok:true,env} when the database responds, 500
// otherwise. Load balancers and uptime checks poll this.
//
// HTTP: GET /api/health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "storage unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"env": h.env,
	})
}
