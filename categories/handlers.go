package categories

import (
	"net/http"

	"github.com/user/audiostream-go/auth"
)

// Handlers wraps the category Service with HTTP handlers.
type Handlers struct {
	service *Service
}

// NewHandlers creates category Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleList godoc
// @Summary List active categories in display order
// @Tags Categories
// @Produce json
// @Success 200 {array} categories.Category
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/categories [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := h.service.ListActive(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if cats == nil {
			cats = []Category{}
		}
		auth.WriteJSON(w, http.StatusOK, cats)
	}
}
