package users

import (
	"context"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/audio"
)

// recentAudioLimit is how many of the user's newest uploads the dashboard shows.
const recentAudioLimit = 5

// Service provides user dashboard operations: profile management plus the
// user's own asset listing and stat rollups.
type Service struct {
	store Store
	audio audio.Store
}

// NewService creates a users Service.
func NewService(store Store, audioStore audio.Store) *Service {
	return &Service{store: store, audio: audioStore}
}

// GetProfile returns the user's profile.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	return s.store.GetProfile(ctx, userID)
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*ProfileResponse, error) {
	if req.Name == nil && req.Email == nil && req.Avatar == nil {
		return nil, apperror.NewBadRequestError("no fields provided for update", nil)
	}
	return s.store.UpdateProfile(ctx, userID, req)
}

// RecentAudio returns the user's newest uploads for the dashboard.
func (s *Service) RecentAudio(ctx context.Context, userID int64) ([]audio.OwnedAssetSummary, error) {
	return s.audio.RecentByOwner(ctx, userID, recentAudioLimit)
}

// Stats sums the counters across the user's own assets. The figures are
// snapshot reads; concurrent uploads or plays may land between queries.
func (s *Service) Stats(ctx context.Context, userID int64) (*audio.OwnerTotals, error) {
	return s.audio.TotalsByOwner(ctx, userID)
}
