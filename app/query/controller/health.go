package controller

import (
	"net/http"

	"go.uber.org/zap"
)

func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	for _, hc := range c.App.HealthChecks {
		if err := hc.Check(ctx); err != nil {
			c.App.Logger.Warn("Health check failed", zap.String("check", hc.Name), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status": "errored",
				"error":  hc.Name + " connection error",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
