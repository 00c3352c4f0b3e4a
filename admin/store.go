package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/audiostream-go/apperror"
)

// Snapshot carries the raw counts behind the admin stats endpoint.
type Snapshot struct {
	TotalUsers         int64
	TotalAudioFiles    int64
	TotalDownloads     int64
	ActiveUsers        int64
	NewUsersToday      int64
	NewAudioFilesToday int64
	DownloadsToday     int64
}

// RecentUser is a registration entry for the activity feed.
type RecentUser struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

// RecentUpload is an upload entry for the activity feed.
type RecentUpload struct {
	ID           int64
	Title        string
	UploaderName string
	CreatedAt    time.Time
}

// Store is the persistence surface for the admin API.
type Store interface {
	Snapshot(ctx context.Context, dayStart, activeSince time.Time) (*Snapshot, error)
	RecentUsers(ctx context.Context, since time.Time, limit int) ([]RecentUser, error)
	RecentUploads(ctx context.Context, since time.Time, limit int) ([]RecentUpload, error)
	ListUsers(ctx context.Context) ([]AdminUser, error)
	UpdateUser(ctx context.Context, userID int64, role, status *string) (*UpdatedUser, error)
}

// PgxStore implements Store against a pgx connection pool.
type PgxStore struct {
	db *pgxpool.Pool
}

// NewPgxStore creates a PgxStore.
func NewPgxStore(db *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: db}
}

// Snapshot runs the counts as one statement of scalar subqueries. These are
// plain reads: no transaction, no caching.
func (s *PgxStore) Snapshot(ctx context.Context, dayStart, activeSince time.Time) (*Snapshot, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM audio_files) AS total_audio_files,
			(SELECT COALESCE(SUM(download_count), 0) FROM audio_files) AS total_downloads,
			(SELECT COUNT(*) FROM users WHERE last_login_at >= $2) AS active_users,
			(SELECT COUNT(*) FROM users WHERE created_at >= $1) AS new_users_today,
			(SELECT COUNT(*) FROM audio_files WHERE created_at >= $1) AS new_audio_files_today,
			(SELECT COUNT(*) FROM downloads WHERE downloaded_at >= $1) AS downloads_today
	`
	var snap Snapshot
	err := s.db.QueryRow(ctx, query, dayStart, activeSince).Scan(
		&snap.TotalUsers, &snap.TotalAudioFiles, &snap.TotalDownloads,
		&snap.ActiveUsers, &snap.NewUsersToday, &snap.NewAudioFilesToday,
		&snap.DownloadsToday,
	)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to compute stats snapshot", err)
	}
	return &snap, nil
}

func (s *PgxStore) RecentUsers(ctx context.Context, since time.Time, limit int) ([]RecentUser, error) {
	query := `
		SELECT id, name, email, created_at
		FROM users
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list recent users", err)
	}
	defer rows.Close()

	var users []RecentUser
	for rows.Next() {
		var u RecentUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan recent user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read recent users", err)
	}
	return users, nil
}

func (s *PgxStore) RecentUploads(ctx context.Context, since time.Time, limit int) ([]RecentUpload, error) {
	// Uploads by demo identities have no users row; COALESCE keeps them visible.
	query := `
		SELECT a.id, a.title, COALESCE(u.name, 'Unknown user'), a.created_at
		FROM audio_files a
		LEFT JOIN users u ON u.id = a.uploaded_by
		WHERE a.created_at >= $1
		ORDER BY a.created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list recent uploads", err)
	}
	defer rows.Close()

	var uploads []RecentUpload
	for rows.Next() {
		var u RecentUpload
		if err := rows.Scan(&u.ID, &u.Title, &u.UploaderName, &u.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan recent upload", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read recent uploads", err)
	}
	return uploads, nil
}

func (s *PgxStore) ListUsers(ctx context.Context) ([]AdminUser, error) {
	query := `
		SELECT u.id, u.name, u.email, u.role, u.status, u.created_at, u.last_login_at,
		       COUNT(a.id) AS total_uploads,
		       COALESCE(SUM(a.download_count), 0) AS total_downloads
		FROM users u
		LEFT JOIN audio_files a ON a.uploaded_by = u.id
		GROUP BY u.id
		ORDER BY u.created_at DESC
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	var users []AdminUser
	for rows.Next() {
		var u AdminUser
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.CreatedAt, &u.LastLoginAt,
			&u.TotalUploads, &u.TotalDownloads,
		); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read users", err)
	}
	return users, nil
}

func (s *PgxStore) UpdateUser(ctx context.Context, userID int64, role, status *string) (*UpdatedUser, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if role != nil {
		setClauses = append(setClauses, fmt.Sprintf("role = $%d", argID))
		args = append(args, *role)
		argID++
	}
	if status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argID))
		args = append(args, *status)
		argID++
	}
	args = append(args, userID)

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING id, name, email, role, status
	`, strings.Join(setClauses, ", "), argID)

	var u UpdatedUser
	err := s.db.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return &u, nil
}
