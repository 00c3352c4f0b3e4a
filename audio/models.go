// Package audio manages audio assets: creation, public listing, and the
// download/play/like counters with their history trail.
package audio

import "time"

// Formats accepted for an asset.
var ValidFormats = map[string]bool{
	"mp3": true, "wav": true, "flac": true, "aac": true, "m4a": true, "ogg": true,
}

// Metadata carries technical details about the encoded audio.
type Metadata struct {
	Bitrate    int    `json:"bitrate,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	Codec      string `json:"codec,omitempty"`
}

// Asset represents an uploaded audio file. The three counters are
// monotonically incremented and never recomputed from the history tables.
type Asset struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	FileName      string    `json:"file_name"`
	FileURL       string    `json:"file_url"`
	FileSize      int64     `json:"file_size"`
	Duration      int       `json:"duration"` // seconds
	Format        string    `json:"format"`
	CategoryID    int64     `json:"category_id"`
	Tags          []string  `json:"tags"`
	UploadedBy    int64     `json:"uploaded_by"`
	IsPublic      bool      `json:"is_public"`
	IsPremium     bool      `json:"is_premium"`
	DownloadCount int64     `json:"download_count"`
	PlayCount     int64     `json:"play_count"`
	Likes         int64     `json:"likes"`
	Metadata      Metadata  `json:"metadata"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnedAssetSummary is the per-asset view shown on the user dashboard.
type OwnedAssetSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Duration      int       `json:"duration"`
	PlayCount     int64     `json:"play_count"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// OwnerTotals sums the counters across one user's assets.
type OwnerTotals struct {
	TotalUploads   int64 `json:"total_uploads"`
	TotalPlays     int64 `json:"total_plays"`
	TotalDownloads int64 `json:"total_downloads"`
	TotalLikes     int64 `json:"total_likes"`
}
