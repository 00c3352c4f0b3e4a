package audio

import (
	"context"

	"github.com/user/audiostream-go/apperror"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service holds audio business logic on top of a Store.
type Service struct {
	store Store
}

// NewService creates an audio Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListPublic returns public assets, newest first.
func (s *Service) ListPublic(ctx context.Context, limit, offset int) ([]Asset, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListPublic(ctx, limit, offset)
}

// RecordDownload bumps the download counters and appends a history row.
func (s *Service) RecordDownload(ctx context.Context, event DownloadEvent) error {
	if event.AssetID <= 0 {
		return apperror.NewBadRequestError("invalid audio file id", nil)
	}
	if event.UserID <= 0 {
		return apperror.NewAuthError("unauthorized", nil)
	}
	return s.store.RecordDownload(ctx, event)
}

// RecordPlay bumps the play counter and appends a history row. Anonymous
// plays are allowed, so UserID may be nil.
func (s *Service) RecordPlay(ctx context.Context, event PlayEvent) error {
	if event.AssetID <= 0 {
		return apperror.NewBadRequestError("invalid audio file id", nil)
	}
	if event.Duration < 0 {
		return apperror.NewValidationError("play duration cannot be negative", nil)
	}
	return s.store.RecordPlay(ctx, event)
}

// RecordLike bumps the like counter.
func (s *Service) RecordLike(ctx context.Context, assetID int64) error {
	if assetID <= 0 {
		return apperror.NewBadRequestError("invalid audio file id", nil)
	}
	return s.store.RecordLike(ctx, assetID)
}
