package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/audiostream-go/apperror"
)

// PlayEvent describes one playback to record. UserID is nil for anonymous plays.
type PlayEvent struct {
	AssetID   int64
	UserID    *int64
	Duration  int
	IPAddress string
	UserAgent string
}

// DownloadEvent describes one download to record.
type DownloadEvent struct {
	AssetID   int64
	UserID    int64
	IPAddress string
	UserAgent string
}

// Store is the persistence surface for audio assets.
type Store interface {
	Insert(ctx context.Context, asset *Asset) (*Asset, error)
	ListPublic(ctx context.Context, limit, offset int) ([]Asset, error)
	RecentByOwner(ctx context.Context, ownerID int64, limit int) ([]OwnedAssetSummary, error)
	TotalsByOwner(ctx context.Context, ownerID int64) (*OwnerTotals, error)
	// RecordDownload increments the asset and user download counters and
	// appends a download-history row, all in one transaction.
	RecordDownload(ctx context.Context, event DownloadEvent) error
	// RecordPlay increments the asset play counter and appends a play-history
	// row in one transaction.
	RecordPlay(ctx context.Context, event PlayEvent) error
	RecordLike(ctx context.Context, assetID int64) error
}

// PgxStore implements Store against a pgx connection pool.
type PgxStore struct {
	db *pgxpool.Pool
}

// NewPgxStore creates a PgxStore.
func NewPgxStore(db *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: db}
}

func (s *PgxStore) Insert(ctx context.Context, asset *Asset) (*Asset, error) {
	query := `
		INSERT INTO audio_files (
			title, description, file_name, file_url, file_size, duration, format,
			category_id, tags, uploaded_by, is_public, is_premium, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, download_count, play_count, likes, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		asset.Title, asset.Description, asset.FileName, asset.FileURL,
		asset.FileSize, asset.Duration, asset.Format,
		asset.CategoryID, asset.Tags, asset.UploadedBy,
		asset.IsPublic, asset.IsPremium, asset.Metadata,
	).Scan(&asset.ID, &asset.DownloadCount, &asset.PlayCount, &asset.Likes, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create audio file", err)
	}
	return asset, nil
}

const assetColumns = `
	id, title, description, file_name, file_url, file_size, duration, format,
	category_id, tags, uploaded_by, is_public, is_premium,
	download_count, play_count, likes, metadata, created_at, updated_at
`

func scanAsset(row pgx.Row) (*Asset, error) {
	var a Asset
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.FileName, &a.FileURL,
		&a.FileSize, &a.Duration, &a.Format,
		&a.CategoryID, &a.Tags, &a.UploadedBy, &a.IsPublic, &a.IsPremium,
		&a.DownloadCount, &a.PlayCount, &a.Likes, &a.Metadata,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PgxStore) ListPublic(ctx context.Context, limit, offset int) ([]Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM audio_files
		WHERE is_public
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, assetColumns)

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list audio files", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan audio file", err)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read audio files", err)
	}
	return assets, nil
}

func (s *PgxStore) RecentByOwner(ctx context.Context, ownerID int64, limit int) ([]OwnedAssetSummary, error) {
	query := `
		SELECT id, title, duration, play_count, download_count, created_at
		FROM audio_files
		WHERE uploaded_by = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list recent audio files", err)
	}
	defer rows.Close()

	var summaries []OwnedAssetSummary
	for rows.Next() {
		var o OwnedAssetSummary
		if err := rows.Scan(&o.ID, &o.Title, &o.Duration, &o.PlayCount, &o.DownloadCount, &o.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan audio summary", err)
		}
		summaries = append(summaries, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read audio summaries", err)
	}
	return summaries, nil
}

func (s *PgxStore) TotalsByOwner(ctx context.Context, ownerID int64) (*OwnerTotals, error) {
	query := `
		SELECT
			COUNT(*) as total_uploads,
			COALESCE(SUM(play_count), 0) as total_plays,
			COALESCE(SUM(download_count), 0) as total_downloads,
			COALESCE(SUM(likes), 0) as total_likes
		FROM audio_files
		WHERE uploaded_by = $1
	`
	var totals OwnerTotals
	err := s.db.QueryRow(ctx, query, ownerID).Scan(
		&totals.TotalUploads, &totals.TotalPlays, &totals.TotalDownloads, &totals.TotalLikes,
	)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to compute owner totals", err)
	}
	return &totals, nil
}

func (s *PgxStore) RecordDownload(ctx context.Context, event DownloadEvent) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var assetID int64
	err = tx.QueryRow(ctx,
		`UPDATE audio_files SET download_count = download_count + 1, updated_at = now() WHERE id = $1 RETURNING id`,
		event.AssetID,
	).Scan(&assetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError(fmt.Sprintf("audio file %d not found", event.AssetID), nil)
		}
		return apperror.NewDatabaseError("failed to increment download count", err)
	}

	// Demo identities have no backing row; the asset counter still moves.
	_, err = tx.Exec(ctx,
		`UPDATE users SET download_count = download_count + 1, monthly_download_count = monthly_download_count + 1 WHERE id = $1`,
		event.UserID,
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to increment user download count", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO downloads (user_id, audio_file_id, ip_address, user_agent) VALUES ($1, $2, $3, $4)`,
		event.UserID, event.AssetID, nullable(event.IPAddress), nullable(event.UserAgent),
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to record download", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewDatabaseError("failed to commit download", err)
	}
	return nil
}

func (s *PgxStore) RecordPlay(ctx context.Context, event PlayEvent) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var assetID int64
	err = tx.QueryRow(ctx,
		`UPDATE audio_files SET play_count = play_count + 1, updated_at = now() WHERE id = $1 RETURNING id`,
		event.AssetID,
	).Scan(&assetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError(fmt.Sprintf("audio file %d not found", event.AssetID), nil)
		}
		return apperror.NewDatabaseError("failed to increment play count", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO play_history (user_id, audio_file_id, duration, ip_address, user_agent) VALUES ($1, $2, $3, $4, $5)`,
		event.UserID, event.AssetID, event.Duration, nullable(event.IPAddress), nullable(event.UserAgent),
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to record play", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewDatabaseError("failed to commit play", err)
	}
	return nil
}

func (s *PgxStore) RecordLike(ctx context.Context, assetID int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE audio_files SET likes = likes + 1, updated_at = now() WHERE id = $1`,
		assetID,
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to increment likes", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("audio file %d not found", assetID), nil)
	}
	return nil
}

// nullable maps the empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
