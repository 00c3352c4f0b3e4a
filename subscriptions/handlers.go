package subscriptions

import (
	"encoding/json"
	"net/http"

	"github.com/user/audiostream-go/apperror"
)

// Handlers wraps the subscription Store with HTTP handlers.
//
// This package is imported by auth (session claims embed a Summary), so the
// handlers here write responses directly instead of going through the auth
// package helpers.
type Handlers struct {
	store Store
}

// NewHandlers creates subscription Handlers.
func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store}
}

// HandleListPlans godoc
// @Summary List active subscription plans
// @Tags Subscriptions
// @Produce json
// @Success 200 {array} subscriptions.Plan
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/plans [get]
func (h *Handlers) HandleListPlans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := h.store.ListActivePlans(r.Context())
		if err != nil {
			appErr, ok := apperror.FromError(err)
			if !ok {
				appErr = apperror.NewInternalError("an unexpected error occurred", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(appErr.StatusCode())
			json.NewEncoder(w).Encode(appErr.ToResponse())
			return
		}
		if plans == nil {
			plans = []Plan{}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(plans)
	}
}
