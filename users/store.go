package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/audiostream-go/apperror"
)

const pgUniqueViolation = "23505"

// Store is the persistence surface for the user dashboard's profile views.
type Store interface {
	GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*ProfileResponse, error)
}

// PgxStore implements Store against a pgx connection pool.
type PgxStore struct {
	db *pgxpool.Pool
}

// NewPgxStore creates a PgxStore.
func NewPgxStore(db *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: db}
}

const profileColumns = `id, name, email, avatar, role, created_at`

func (s *PgxStore) GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, profileColumns)
	var p ProfileResponse
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.Name, &p.Email, &p.Avatar, &p.Role, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return &p, nil
}

// UpdateProfile builds the UPDATE dynamically from the provided fields.
func (s *PgxStore) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*ProfileResponse, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if req.Name != nil && *req.Name != "" {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, strings.TrimSpace(*req.Name))
		argID++
	}
	if req.Email != nil && *req.Email != "" {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, strings.ToLower(strings.TrimSpace(*req.Email)))
		argID++
	}
	if req.Avatar != nil {
		setClauses = append(setClauses, fmt.Sprintf("avatar = $%d", argID))
		args = append(args, *req.Avatar)
		argID++
	}

	if len(setClauses) == 0 {
		return s.GetProfile(ctx, userID)
	}

	args = append(args, userID)
	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argID, profileColumns)

	var p ProfileResponse
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Email, &p.Avatar, &p.Role, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d not found", userID), nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError("email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user profile", err)
	}
	return &p, nil
}
