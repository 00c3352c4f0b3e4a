package audio

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/user/audiostream-go/auth"
)

func newTestRouter(store Store) chi.Router {
	h := NewHandlers(NewService(store))
	r := chi.NewRouter()
	r.Get("/api/audio", h.HandleList())
	r.Post("/api/audio/{id}/play", h.HandlePlay())
	r.Post("/api/audio/{id}/download", h.HandleDownload())
	r.Post("/api/audio/{id}/like", h.HandleLike())
	return r
}

func withUser(r *http.Request, userID int64) *http.Request {
	claims := &auth.Claims{UserID: userID, Role: auth.RoleUser}
	return r.WithContext(auth.NewContextWithClaims(r.Context(), claims))
}

func TestHandleList_EmptyResultIsAnArray(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeStore{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audio", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want an empty JSON array", body)
	}
}

func TestHandlePlay_AnonymousWithBody(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/audio/7/play", strings.NewReader(`{"duration": 42}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(store.plays) != 1 {
		t.Fatalf("plays = %d, want 1", len(store.plays))
	}
	play := store.plays[0]
	if play.AssetID != 7 || play.Duration != 42 || play.UserID != nil {
		t.Errorf("play = %+v, want anonymous play of asset 7 for 42s", play)
	}
}

func TestHandlePlay_MalformedBodyMeansZeroDuration(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/audio/7/play", strings.NewReader("{{{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if store.plays[0].Duration != 0 {
		t.Errorf("duration = %d, want 0", store.plays[0].Duration)
	}
}

func TestHandleDownload(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	router := newTestRouter(store)

	// Without claims in context the handler rejects.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/audio/7/download", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/audio/7/download", nil), 3))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated: status = %d, want 204", rec.Code)
	}
	if len(store.downloads) != 1 || store.downloads[0].UserID != 3 {
		t.Fatalf("downloads = %+v, want one event for user 3", store.downloads)
	}
}

func TestHandleDownload_BadID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeStore{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/audio/abc/download", nil), 3))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleLike(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/audio/9/like", nil), 3))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(store.likes) != 1 || store.likes[0] != 9 {
		t.Fatalf("likes = %v, want [9]", store.likes)
	}
}
