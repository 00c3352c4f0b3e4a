package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/audio"
	"github.com/user/audiostream-go/auth"
	"github.com/user/audiostream-go/categories"
	"github.com/user/audiostream-go/config"
)

const (
	activityWindow   = 24 * time.Hour
	activityPerKind  = 5
	activityMaxItems = 10
	activeUserWindow = 30 * 24 * time.Hour
)

// Simulated upload bounds: duration in [60, 360] seconds.
const (
	simulatedMinDuration  = 60
	simulatedMaxDuration  = 360
	simulatedBitrate      = 320
	simulatedSampleRate   = 44100
	simulatedChannelCount = 2
)

// Service implements the admin operations.
type Service struct {
	store      Store
	audio      audio.Store
	categories *categories.Service
	cfg        config.StatsConfig

	// now and durationFn are swappable for tests.
	now        func() time.Time
	durationFn func() int
}

// NewService creates an admin Service.
func NewService(store Store, audioStore audio.Store, categoryService *categories.Service, cfg config.StatsConfig) *Service {
	return &Service{
		store:      store,
		audio:      audioStore,
		categories: categoryService,
		cfg:        cfg,
		now:        time.Now,
		durationFn: func() int {
			return simulatedMinDuration + rand.Intn(simulatedMaxDuration-simulatedMinDuration+1)
		},
	}
}

// roundCents rounds to two decimal places.
func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

// dayStart returns server-local midnight of the given instant.
func dayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Stats assembles the dashboard snapshot. Revenue is the configured
// per-identity multiplier times the user count, a placeholder rather than a
// billing figure.
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	now := s.now()
	snap, err := s.store.Snapshot(ctx, dayStart(now), now.Add(-activeUserWindow))
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		TotalUsers:         snap.TotalUsers,
		TotalAudioFiles:    snap.TotalAudioFiles,
		TotalDownloads:     snap.TotalDownloads,
		TotalRevenue:       roundCents(float64(snap.TotalUsers) * s.cfg.RevenuePerUser),
		ActiveUsers:        snap.ActiveUsers,
		NewUsersToday:      snap.NewUsersToday,
		NewAudioFilesToday: snap.NewAudioFilesToday,
		DownloadsToday:     snap.DownloadsToday,
		RevenueToday:       roundCents(float64(snap.NewUsersToday) * s.cfg.RevenuePerUser),
	}, nil
}

// Activity merges registrations and uploads from the last 24 hours, newest
// first, capped at ten entries.
func (s *Service) Activity(ctx context.Context) ([]ActivityItem, error) {
	since := s.now().Add(-activityWindow)

	recentUsers, err := s.store.RecentUsers(ctx, since, activityPerKind)
	if err != nil {
		return nil, err
	}
	recentUploads, err := s.store.RecentUploads(ctx, since, activityPerKind)
	if err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(recentUsers)+len(recentUploads))
	for _, u := range recentUsers {
		items = append(items, ActivityItem{
			ID:        fmt.Sprintf("user-%d", u.ID),
			Type:      "user_registered",
			Message:   fmt.Sprintf("New user %s registered", u.Name),
			Timestamp: u.CreatedAt,
			User:      u.Name,
		})
	}
	for _, up := range recentUploads {
		items = append(items, ActivityItem{
			ID:        fmt.Sprintf("audio-%d", up.ID),
			Type:      "audio_uploaded",
			Message:   fmt.Sprintf("%s uploaded %q", up.UploaderName, up.Title),
			Timestamp: up.CreatedAt,
			User:      up.UploaderName,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > activityMaxItems {
		items = items[:activityMaxItems]
	}
	return items, nil
}

// ListUsers returns all users with their upload/download rollups.
func (s *Service) ListUsers(ctx context.Context) ([]AdminUser, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUser patches a user's role and/or status.
func (s *Service) UpdateUser(ctx context.Context, userID int64, req *UpdateUserRequest) (*UpdatedUser, error) {
	if req.Role == nil && req.Status == nil {
		return nil, apperror.NewBadRequestError("no fields provided for update", nil)
	}
	if req.Role != nil && *req.Role != auth.RoleUser && *req.Role != auth.RoleAdmin {
		return nil, apperror.NewValidationError("role must be 'user' or 'admin'", nil)
	}
	if req.Status != nil && *req.Status != auth.StatusActive && *req.Status != auth.StatusBlocked {
		return nil, apperror.NewValidationError("status must be 'active' or 'blocked'", nil)
	}
	return s.store.UpdateUser(ctx, userID, req.Role, req.Status)
}

// assetFormat derives the audio format from the content type, falling back to
// the file extension and finally to mp3.
func assetFormat(contentType, fileName string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if idx := strings.Index(mediaType, "/"); idx >= 0 {
			candidate := strings.ToLower(mediaType[idx+1:])
			if audio.ValidFormats[candidate] {
				return candidate
			}
		}
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if audio.ValidFormats[ext] {
		return ext
	}
	return "mp3"
}

// Upload records a new asset for a received file. The binary storage step is
// simulated: the file gets a generated URL and a pseudo-random duration, and
// its bytes are discarded.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	title := strings.TrimSpace(req.Title)
	if req.FileName == "" || title == "" {
		return nil, apperror.NewBadRequestError("file and title are required", nil)
	}

	var tags []string
	if req.TagsJSON != "" {
		if err := json.Unmarshal([]byte(req.TagsJSON), &tags); err != nil {
			return nil, apperror.NewValidationError("tags must be a JSON array of strings", err)
		}
	}
	for i, tag := range tags {
		tags[i] = strings.ToLower(strings.TrimSpace(tag))
	}

	category, err := s.categories.FindOrCreate(ctx, req.CategoryName)
	if err != nil {
		return nil, err
	}

	format := assetFormat(req.ContentType, req.FileName)
	var description *string
	if d := strings.TrimSpace(req.Description); d != "" {
		description = &d
	}

	asset := &audio.Asset{
		Title:       title,
		Description: description,
		FileName:    req.FileName,
		FileURL:     fmt.Sprintf("https://example.com/audio/%s/%s", uuid.NewString(), req.FileName),
		FileSize:    req.FileSize,
		Duration:    s.durationFn(),
		Format:      format,
		CategoryID:  category.ID,
		Tags:        tags,
		UploadedBy:  req.UploaderID,
		IsPublic:    req.IsPublic,
		IsPremium:   req.IsPremium,
		Metadata: audio.Metadata{
			Bitrate:    simulatedBitrate,
			SampleRate: simulatedSampleRate,
			Channels:   simulatedChannelCount,
			Codec:      format,
		},
	}

	created, err := s.audio.Insert(ctx, asset)
	if err != nil {
		return nil, err
	}

	return &UploadResponse{
		Success: true,
		AudioFile: UploadedAsset{
			ID:          created.ID,
			Title:       created.Title,
			Description: created.Description,
			FileURL:     created.FileURL,
			Duration:    created.Duration,
			Category:    category.Name,
			Tags:        tags,
			IsPublic:    created.IsPublic,
			IsPremium:   created.IsPremium,
		},
	}, nil
}
