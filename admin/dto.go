// Package admin implements the admin-only API surface: dashboard statistics,
// the recent-activity feed, user management, and the simulated upload.
package admin

import "time"

// StatsResponse is the admin dashboard snapshot. The figures are independent
// reads with no isolation guarantee; at this data volume a slightly torn
// snapshot is acceptable.
type StatsResponse struct {
	TotalUsers         int64   `json:"total_users"`
	TotalAudioFiles    int64   `json:"total_audio_files"`
	TotalDownloads     int64   `json:"total_downloads"`
	TotalRevenue       float64 `json:"total_revenue"`
	ActiveUsers        int64   `json:"active_users"`
	NewUsersToday      int64   `json:"new_users_today"`
	NewAudioFilesToday int64   `json:"new_audio_files_today"`
	DownloadsToday     int64   `json:"downloads_today"`
	RevenueToday       float64 `json:"revenue_today"`
}

// ActivityItem is one entry of the recent-activity feed.
type ActivityItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "user_registered" or "audio_uploaded"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user,omitempty"`
}

// AdminUser is one row of the admin user list, with upload/download rollups.
type AdminUser struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	TotalUploads   int64      `json:"total_uploads"`
	TotalDownloads int64      `json:"total_downloads"`
}

// UpdateUserRequest patches a user's role and/or status.
type UpdateUserRequest struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// UpdatedUser is returned after a successful patch.
type UpdatedUser struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// UploadRequest describes a multipart upload after form parsing.
type UploadRequest struct {
	FileName     string
	FileSize     int64
	ContentType  string
	Title        string
	Description  string
	CategoryName string
	TagsJSON     string
	IsPublic     bool
	IsPremium    bool
	UploaderID   int64
}

// UploadedAsset is the response body for a simulated upload.
type UploadedAsset struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	FileURL     string   `json:"file_url"`
	Duration    int      `json:"duration"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"is_public"`
	IsPremium   bool     `json:"is_premium"`
}

// UploadResponse wraps the created asset.
type UploadResponse struct {
	Success   bool          `json:"success"`
	AudioFile UploadedAsset `json:"audio_file"`
}
