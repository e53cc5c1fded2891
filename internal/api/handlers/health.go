package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"upiqr/internal/engine/render"
	"upiqr/internal/pkg/errors"
)

type HealthHandler struct {
	db       *sql.DB
	composer *render.Composer
}

func NewHealthHandler(db *sql.DB, composer *render.Composer) *HealthHandler {
	return &HealthHandler{db: db, composer: composer}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	healthy := true

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		checks["database"] = "healthy"
	}
	checks["render_backend"] = h.composer.Backend()

	status, statusCode := "healthy", http.StatusOK
	if !healthy {
		status, statusCode = "degraded", http.StatusServiceUnavailable
	}

	errors.WriteJSON(w, statusCode, struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	})
}
