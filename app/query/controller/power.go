package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/canopy-network/powerx/pkg/power"
	"go.uber.org/zap"
)

// HandleAccountPower serves GET /account_power.
func (c *Controller) HandleAccountPower(w http.ResponseWriter, r *http.Request) {
	req, err := parsePowerRequest(r, "account")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := c.queryContext(r)
	defer cancel()

	out, err := c.App.Power.GetAccountPower(ctx, req)
	if err != nil {
		var reqErr *power.RequestError
		if errors.As(err, &reqErr) {
			writeJSON(w, http.StatusOK, map[string]string{
				"account": reqErr.Subject,
				"name":    reqErr.DisplayName(),
			})
			return
		}
		c.writeServiceError(w, err, zap.String("account", req.Subject))
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// HandleVoteableVotes serves GET /voteable_votes.
func (c *Controller) HandleVoteableVotes(w http.ResponseWriter, r *http.Request) {
	req, err := parsePowerRequest(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := c.queryContext(r)
	defer cancel()

	out, err := c.App.Power.GetVoteableVotes(ctx, req)
	if err != nil {
		var reqErr *power.RequestError
		if errors.As(err, &reqErr) {
			writeJSON(w, http.StatusOK, map[string]string{
				"id":      reqErr.Subject,
				"vote_id": reqErr.DisplayName(),
				"name":    reqErr.DisplayName(),
			})
			return
		}
		c.writeServiceError(w, err, zap.String("id", req.Subject))
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (c *Controller) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	if c.App.QueryTimeout > 0 {
		return context.WithTimeout(r.Context(), c.App.QueryTimeout)
	}
	return context.WithCancel(r.Context())
}

func (c *Controller) writeServiceError(w http.ResponseWriter, err error, fields ...zap.Field) {
	switch {
	case errors.Is(err, power.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, "invalid type, must be 'total', 'proxy' or 'voters'")
	case errors.Is(err, context.DeadlineExceeded):
		c.App.Logger.Warn("Query timed out", append(fields, zap.Error(err))...)
		writeError(w, http.StatusGatewayTimeout, "query timed out")
	default:
		c.App.Logger.Error("Query failed", append(fields, zap.Error(err))...)
		writeError(w, http.StatusInternalServerError, "query failed")
	}
}
