package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/audio"
	"github.com/user/audiostream-go/categories"
	"github.com/user/audiostream-go/config"
)

type fakeAdminStore struct {
	snapshot *Snapshot

	recentUsers   []RecentUser
	recentUploads []RecentUpload

	updatedRole   *string
	updatedStatus *string
	updateCalls   int
}

func (f *fakeAdminStore) Snapshot(_ context.Context, _, _ time.Time) (*Snapshot, error) {
	return f.snapshot, nil
}

func (f *fakeAdminStore) RecentUsers(_ context.Context, _ time.Time, _ int) ([]RecentUser, error) {
	return f.recentUsers, nil
}

func (f *fakeAdminStore) RecentUploads(_ context.Context, _ time.Time, _ int) ([]RecentUpload, error) {
	return f.recentUploads, nil
}

func (f *fakeAdminStore) ListUsers(_ context.Context) ([]AdminUser, error) {
	return nil, nil
}

func (f *fakeAdminStore) UpdateUser(_ context.Context, userID int64, role, status *string) (*UpdatedUser, error) {
	f.updateCalls++
	f.updatedRole = role
	f.updatedStatus = status
	return &UpdatedUser{ID: userID}, nil
}

type fakeAudioStore struct {
	inserted []*audio.Asset
	nextID   int64
}

func (f *fakeAudioStore) Insert(_ context.Context, asset *audio.Asset) (*audio.Asset, error) {
	f.nextID++
	asset.ID = f.nextID
	f.inserted = append(f.inserted, asset)
	return asset, nil
}

func (f *fakeAudioStore) ListPublic(_ context.Context, _, _ int) ([]audio.Asset, error) {
	return nil, nil
}

func (f *fakeAudioStore) RecentByOwner(_ context.Context, _ int64, _ int) ([]audio.OwnedAssetSummary, error) {
	return nil, nil
}

func (f *fakeAudioStore) TotalsByOwner(_ context.Context, _ int64) (*audio.OwnerTotals, error) {
	return &audio.OwnerTotals{}, nil
}

func (f *fakeAudioStore) RecordDownload(_ context.Context, _ audio.DownloadEvent) error { return nil }
func (f *fakeAudioStore) RecordPlay(_ context.Context, _ audio.PlayEvent) error         { return nil }
func (f *fakeAudioStore) RecordLike(_ context.Context, _ int64) error                   { return nil }

type fakeCategoryStore struct {
	byName      map[string]*categories.Category
	nextID      int64
	createCalls int
}

func (f *fakeCategoryStore) FindByName(_ context.Context, name string) (*categories.Category, error) {
	if c, ok := f.byName[name]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFoundError("category not found", nil)
}

func (f *fakeCategoryStore) Create(_ context.Context, c *categories.Category) (*categories.Category, error) {
	f.createCalls++
	f.nextID++
	c.ID = f.nextID
	f.byName[c.Name] = c
	return c, nil
}

func (f *fakeCategoryStore) SetParent(_ context.Context, _ int64, _ *int64) error { return nil }

func (f *fakeCategoryStore) ListActive(_ context.Context) ([]categories.Category, error) {
	return nil, nil
}

func newTestService(store Store, audioStore audio.Store) *Service {
	catStore := &fakeCategoryStore{byName: map[string]*categories.Category{}}
	return NewService(store, audioStore, categories.NewService(catStore), config.StatsConfig{RevenuePerUser: 9.99})
}

func TestStats_Revenue(t *testing.T) {
	t.Parallel()

	store := &fakeAdminStore{snapshot: &Snapshot{
		TotalUsers:      150,
		TotalAudioFiles: 40,
		TotalDownloads:  1200,
		ActiveUsers:     30,
		NewUsersToday:   3,
		DownloadsToday:  17,
	}}
	service := newTestService(store, &fakeAudioStore{})

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1498.50, stats.TotalRevenue, "150 users at 9.99 each, rounded to cents")
	assert.Equal(t, 29.97, stats.RevenueToday)
	assert.Equal(t, int64(150), stats.TotalUsers)
	assert.Equal(t, int64(17), stats.DownloadsToday)
}

func TestStats_RevenueRounding(t *testing.T) {
	t.Parallel()

	// 3 users at 0.10 must come out as 0.30 exactly, not 0.30000000000000004.
	store := &fakeAdminStore{snapshot: &Snapshot{TotalUsers: 3}}
	catStore := &fakeCategoryStore{byName: map[string]*categories.Category{}}
	service := NewService(store, &fakeAudioStore{}, categories.NewService(catStore), config.StatsConfig{RevenuePerUser: 0.10})

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.30, stats.TotalRevenue)
}

func TestActivity_MergesNewestFirstAndCaps(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeAdminStore{}
	for i := 0; i < 6; i++ {
		store.recentUsers = append(store.recentUsers, RecentUser{
			ID: int64(i + 1), Name: "user", CreatedAt: base.Add(time.Duration(2*i) * time.Minute),
		})
		store.recentUploads = append(store.recentUploads, RecentUpload{
			ID: int64(i + 1), Title: "track", UploaderName: "user",
			CreatedAt: base.Add(time.Duration(2*i+1) * time.Minute),
		})
	}
	service := newTestService(store, &fakeAudioStore{})

	items, err := service.Activity(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 10, "the feed is capped at ten entries")
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Timestamp.After(items[i-1].Timestamp),
			"items must be ordered newest first")
	}
	assert.Equal(t, "audio-6", items[0].ID)
	assert.Equal(t, "audio_uploaded", items[0].Type)
}

func TestActivity_MessageShapes(t *testing.T) {
	t.Parallel()

	now := time.Now()
	store := &fakeAdminStore{
		recentUsers:   []RecentUser{{ID: 9, Name: "Alice", CreatedAt: now}},
		recentUploads: []RecentUpload{{ID: 4, Title: "Night Drive", UploaderName: "Bob", CreatedAt: now.Add(-time.Minute)}},
	}
	service := newTestService(store, &fakeAudioStore{})

	items, err := service.Activity(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "user-9", items[0].ID)
	assert.Equal(t, "New user Alice registered", items[0].Message)
	assert.Equal(t, `Bob uploaded "Night Drive"`, items[1].Message)
}

func TestUpdateUser_Validation(t *testing.T) {
	t.Parallel()

	store := &fakeAdminStore{}
	service := newTestService(store, &fakeAudioStore{})

	_, err := service.UpdateUser(context.Background(), 1, &UpdateUserRequest{})
	require.Error(t, err)

	bad := "superadmin"
	_, err = service.UpdateUser(context.Background(), 1, &UpdateUserRequest{Role: &bad})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))

	badStatus := "suspended"
	_, err = service.UpdateUser(context.Background(), 1, &UpdateUserRequest{Status: &badStatus})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))

	assert.Equal(t, 0, store.updateCalls)

	role := "admin"
	status := "blocked"
	_, err = service.UpdateUser(context.Background(), 1, &UpdateUserRequest{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, &role, store.updatedRole)
	assert.Equal(t, &status, store.updatedStatus)
}

func TestUpload(t *testing.T) {
	t.Parallel()

	audioStore := &fakeAudioStore{}
	service := newTestService(&fakeAdminStore{}, audioStore)

	resp, err := service.Upload(context.Background(), UploadRequest{
		FileName:     "night-drive.mp3",
		FileSize:     1024,
		ContentType:  "audio/mpeg",
		Title:        "Night Drive",
		Description:  "synthwave",
		CategoryName: "Electronic",
		TagsJSON:     `[" Synth", "RETRO "]`,
		IsPublic:     true,
		UploaderID:   2,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.Len(t, audioStore.inserted, 1)
	asset := audioStore.inserted[0]

	assert.GreaterOrEqual(t, asset.Duration, 60)
	assert.LessOrEqual(t, asset.Duration, 360)
	assert.True(t, strings.HasPrefix(asset.FileURL, "https://example.com/audio/"))
	assert.True(t, strings.HasSuffix(asset.FileURL, "/night-drive.mp3"))
	assert.Equal(t, []string{"synth", "retro"}, asset.Tags)
	assert.Equal(t, int64(2), asset.UploadedBy)
	assert.Equal(t, 320, asset.Metadata.Bitrate)
	assert.Equal(t, 44100, asset.Metadata.SampleRate)
	assert.Equal(t, 2, asset.Metadata.Channels)
	assert.Equal(t, "Electronic", resp.AudioFile.Category)
}

func TestUpload_InjectedDuration(t *testing.T) {
	t.Parallel()

	audioStore := &fakeAudioStore{}
	service := newTestService(&fakeAdminStore{}, audioStore)
	service.durationFn = func() int { return 123 }

	resp, err := service.Upload(context.Background(), UploadRequest{
		FileName:   "a.mp3",
		Title:      "A",
		UploaderID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 123, resp.AudioFile.Duration)
}

func TestUpload_RequiresFileAndTitle(t *testing.T) {
	t.Parallel()

	service := newTestService(&fakeAdminStore{}, &fakeAudioStore{})

	_, err := service.Upload(context.Background(), UploadRequest{FileName: "a.mp3"})
	require.Error(t, err)

	_, err = service.Upload(context.Background(), UploadRequest{Title: "A"})
	require.Error(t, err)
}

func TestUpload_ReusesCategory(t *testing.T) {
	t.Parallel()

	catStore := &fakeCategoryStore{byName: map[string]*categories.Category{}}
	service := NewService(&fakeAdminStore{}, &fakeAudioStore{}, categories.NewService(catStore), config.StatsConfig{RevenuePerUser: 9.99})

	for i := 0; i < 2; i++ {
		_, err := service.Upload(context.Background(), UploadRequest{
			FileName:     "a.mp3",
			Title:        "A",
			CategoryName: "Jazz",
			UploaderID:   2,
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, catStore.createCalls, "the second upload reuses the Jazz category")
}

func TestUpload_RejectsMalformedTags(t *testing.T) {
	t.Parallel()

	service := newTestService(&fakeAdminStore{}, &fakeAudioStore{})

	_, err := service.Upload(context.Background(), UploadRequest{
		FileName: "a.mp3",
		Title:    "A",
		TagsJSON: "not json",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
}

func TestAssetFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		fileName    string
		want        string
	}{
		{"audio/wav", "take1.bin", "wav"},
		{"audio/flac; charset=utf-8", "take1.bin", "flac"},
		{"application/octet-stream", "take1.ogg", "ogg"},
		{"", "take1.M4A", "m4a"},
		{"audio/mpeg", "take1.bin", "mp3"},
		{"", "noextension", "mp3"},
	}

	for _, tt := range tests {
		if got := assetFormat(tt.contentType, tt.fileName); got != tt.want {
			t.Errorf("assetFormat(%q, %q) = %q, want %q", tt.contentType, tt.fileName, got, tt.want)
		}
	}
}
