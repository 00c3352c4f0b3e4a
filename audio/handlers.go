package audio

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/auth"
)

// Handlers wraps the audio Service with HTTP handlers.
type Handlers struct {
	service *Service
}

// NewHandlers creates audio Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// playRequest is the optional body for play recording.
type playRequest struct {
	Duration int `json:"duration"`
}

func assetIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError("invalid audio file id", err)
	}
	return id, nil
}

// HandleList godoc
// @Summary List public audio files
// @Tags Audio
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {array} audio.Asset
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/audio [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		assets, err := h.service.ListPublic(r.Context(), limit, offset)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if assets == nil {
			assets = []Asset{}
		}
		auth.WriteJSON(w, http.StatusOK, assets)
	}
}

// HandleDownload godoc
// @Summary Record a download of an audio file
// @Tags Audio
// @Produce json
// @Security BearerAuth
// @Param id path int true "Audio file id"
// @Success 204 "Download recorded"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/audio/{id}/download [post]
func (h *Handlers) HandleDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
			return
		}
		assetID, err := assetIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		event := DownloadEvent{
			AssetID:   assetID,
			UserID:    userID,
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
		}
		if err := h.service.RecordDownload(r.Context(), event); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandlePlay godoc
// @Summary Record a play of an audio file
// @Description Anonymous plays are accepted; a valid token attributes the play.
// @Tags Audio
// @Accept json
// @Produce json
// @Param id path int true "Audio file id"
// @Param playBody body audio.playRequest false "Played duration in seconds"
// @Success 204 "Play recorded"
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/audio/{id}/play [post]
func (h *Handlers) HandlePlay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := assetIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req playRequest
		if r.Body != nil {
			// The body is optional; a missing or malformed one means duration 0.
			_ = json.NewDecoder(r.Body).Decode(&req)
			defer r.Body.Close()
		}

		event := PlayEvent{
			AssetID:   assetID,
			Duration:  req.Duration,
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
		}
		if userID, ok := auth.UserIDFromContext(r.Context()); ok {
			event.UserID = &userID
		}

		if err := h.service.RecordPlay(r.Context(), event); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleLike godoc
// @Summary Like an audio file
// @Tags Audio
// @Produce json
// @Security BearerAuth
// @Param id path int true "Audio file id"
// @Success 204 "Like recorded"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/audio/{id}/like [post]
func (h *Handlers) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			auth.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
			return
		}
		assetID, err := assetIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.RecordLike(r.Context(), assetID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
