package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/audiostream-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// ErrUserNotFound is returned when no user exists for a lookup key.
var ErrUserNotFound = errors.New("user not found")

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	TouchLastLogin(ctx context.Context, userID int64) error
}

// PgxUserStore implements UserStore against a pgx connection pool.
type PgxUserStore struct {
	db *pgxpool.Pool
}

// NewPgxUserStore creates a PgxUserStore.
func NewPgxUserStore(db *pgxpool.Pool) *PgxUserStore {
	return &PgxUserStore{db: db}
}

func (s *PgxUserStore) Create(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (name, email, password, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, download_count, monthly_download_count, last_download_reset, created_at
	`
	err := s.db.QueryRow(ctx, query,
		user.Name, user.Email, user.HashedPassword, user.Role, user.Status,
	).Scan(&user.ID, &user.DownloadCount, &user.MonthlyDownloadCount, &user.LastDownloadReset, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError("email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

func (s *PgxUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, avatar, role, status,
		       download_count, monthly_download_count, last_download_reset,
		       last_login_at, created_at
		FROM users
		WHERE email = $1
	`
	var user User
	err := s.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Avatar,
		&user.Role, &user.Status,
		&user.DownloadCount, &user.MonthlyDownloadCount, &user.LastDownloadReset,
		&user.LastLoginAt, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return &user, nil
}

func (s *PgxUserStore) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now(), userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to update last login", err)
	}
	return nil
}
