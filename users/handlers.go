package users

import (
	"encoding/json"
	"net/http"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/audio"
	"github.com/user/audiostream-go/auth"
)

// Handlers provides HTTP handlers for the user dashboard.
type Handlers struct {
	service *Service
}

// NewHandlers creates users Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleGetProfile godoc
// @Summary Get current user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/me [get]
func (h *Handlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
			return
		}
		profile, err := h.service.GetProfile(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateProfile godoc
// @Summary Update current user's profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profileBody body users.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} users.ProfileResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users/me [put]
func (h *Handlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleRecentAudio godoc
// @Summary List the current user's most recent uploads
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} audio.OwnedAssetSummary
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/user/audio [get]
func (h *Handlers) HandleRecentAudio() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
			return
		}
		recent, err := h.service.RecentAudio(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if recent == nil {
			recent = []audio.OwnedAssetSummary{}
		}
		auth.WriteJSON(w, http.StatusOK, recent)
	}
}

// HandleStats godoc
// @Summary Get the current user's upload/play/download/like totals
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} audio.OwnerTotals
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/user/stats [get]
func (h *Handlers) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
			return
		}
		stats, err := h.service.Stats(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, stats)
	}
}
