package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/auth"
)

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 32 << 20 // 32 MiB

// Handlers wraps the admin Service with HTTP handlers. All routes are mounted
// behind RequireAuth + RequireRole("admin"); the page-level redirect the web
// client performs is an independent enforcement point over the same claims.
type Handlers struct {
	service *Service
}

// NewHandlers creates admin Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleStats godoc
// @Summary Admin dashboard statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} admin.StatsResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/admin/stats [get]
func (h *Handlers) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.service.Stats(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, stats)
	}
}

// HandleActivity godoc
// @Summary Recent registrations and uploads
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} admin.ActivityItem
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/admin/activity [get]
func (h *Handlers) HandleActivity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activity, err := h.service.Activity(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if activity == nil {
			activity = []ActivityItem{}
		}
		auth.WriteJSON(w, http.StatusOK, activity)
	}
}

// HandleListUsers godoc
// @Summary List all users with upload/download rollups
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} admin.AdminUser
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/admin/users [get]
func (h *Handlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.service.ListUsers(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if users == nil {
			users = []AdminUser{}
		}
		auth.WriteJSON(w, http.StatusOK, users)
	}
}

// HandleUpdateUser godoc
// @Summary Update a user's role or status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Param updateBody body admin.UpdateUserRequest true "Fields to update"
// @Success 200 {object} admin.UpdatedUser
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/admin/users/{id} [patch]
func (h *Handlers) HandleUpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || userID <= 0 {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid user id", err))
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		updated, err := h.service.UpdateUser(r.Context(), userID, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, updated)
	}
}

// HandleUpload godoc
// @Summary Upload a new audio file (storage simulated)
// @Tags Admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Audio file"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param category formData string false "Category name"
// @Param tags formData string false "JSON array of tags"
// @Param isPublic formData bool false "Public visibility"
// @Param isPremium formData bool false "Premium flag"
// @Success 201 {object} admin.UploadResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/admin/upload [post]
func (h *Handlers) HandleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
			return
		}

		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid multipart form", err))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("file and title are required", err))
			return
		}
		// The binary is never stored; close it immediately.
		file.Close()

		req := UploadRequest{
			FileName:     header.Filename,
			FileSize:     header.Size,
			ContentType:  header.Header.Get("Content-Type"),
			Title:        r.FormValue("title"),
			Description:  r.FormValue("description"),
			CategoryName: r.FormValue("category"),
			TagsJSON:     r.FormValue("tags"),
			IsPublic:     r.FormValue("isPublic") == "true",
			IsPremium:    r.FormValue("isPremium") == "true",
			UploaderID:   claims.UserID,
		}

		resp, err := h.service.Upload(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, resp)
	}
}
