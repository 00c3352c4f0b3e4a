package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/audio"
)

type fakeProfileStore struct {
	profile     *ProfileResponse
	updateCalls int
	lastReq     *UpdateProfileRequest
}

func (f *fakeProfileStore) GetProfile(_ context.Context, _ int64) (*ProfileResponse, error) {
	return f.profile, nil
}

func (f *fakeProfileStore) UpdateProfile(_ context.Context, _ int64, req *UpdateProfileRequest) (*ProfileResponse, error) {
	f.updateCalls++
	f.lastReq = req
	return f.profile, nil
}

type fakeAudioStore struct {
	recentLimit int
	summaries   []audio.OwnedAssetSummary
	totals      *audio.OwnerTotals
}

func (f *fakeAudioStore) Insert(_ context.Context, asset *audio.Asset) (*audio.Asset, error) {
	return asset, nil
}

func (f *fakeAudioStore) ListPublic(_ context.Context, _, _ int) ([]audio.Asset, error) {
	return nil, nil
}

func (f *fakeAudioStore) RecentByOwner(_ context.Context, _ int64, limit int) ([]audio.OwnedAssetSummary, error) {
	f.recentLimit = limit
	return f.summaries, nil
}

func (f *fakeAudioStore) TotalsByOwner(_ context.Context, _ int64) (*audio.OwnerTotals, error) {
	return f.totals, nil
}

func (f *fakeAudioStore) RecordDownload(_ context.Context, _ audio.DownloadEvent) error { return nil }
func (f *fakeAudioStore) RecordPlay(_ context.Context, _ audio.PlayEvent) error         { return nil }
func (f *fakeAudioStore) RecordLike(_ context.Context, _ int64) error                   { return nil }

func TestUpdateProfile_RequiresAtLeastOneField(t *testing.T) {
	t.Parallel()

	store := &fakeProfileStore{}
	service := NewService(store, &fakeAudioStore{})

	_, err := service.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{})
	require.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
	assert.Equal(t, 0, store.updateCalls)

	name := "New Name"
	store.profile = &ProfileResponse{ID: 1, Name: name}
	_, err = service.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 1, store.updateCalls)
	assert.Equal(t, &name, store.lastReq.Name)
}

func TestRecentAudio_UsesDashboardLimit(t *testing.T) {
	t.Parallel()

	audioStore := &fakeAudioStore{
		summaries: []audio.OwnedAssetSummary{{ID: 1, Title: "Track"}},
	}
	service := NewService(&fakeProfileStore{}, audioStore)

	got, err := service.RecentAudio(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 5, audioStore.recentLimit)
}

func TestStats_PassesThroughTotals(t *testing.T) {
	t.Parallel()

	audioStore := &fakeAudioStore{
		totals: &audio.OwnerTotals{TotalUploads: 3, TotalPlays: 40, TotalDownloads: 12, TotalLikes: 7},
	}
	service := NewService(&fakeProfileStore{}, audioStore)

	totals, err := service.Stats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.TotalUploads)
	assert.Equal(t, int64(40), totals.TotalPlays)
	assert.Equal(t, int64(12), totals.TotalDownloads)
	assert.Equal(t, int64(7), totals.TotalLikes)
}
