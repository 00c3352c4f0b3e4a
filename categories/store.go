package categories

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

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// Store is the persistence surface for categories.
type Store interface {
	FindByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, category *Category) (*Category, error)
	SetParent(ctx context.Context, id int64, parentID *int64) error
	ListActive(ctx context.Context) ([]Category, error)
}

// PgxStore implements Store against a pgx connection pool.
type PgxStore struct {
	db *pgxpool.Pool
}

// NewPgxStore creates a PgxStore.
func NewPgxStore(db *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: db}
}

func (s *PgxStore) FindByName(ctx context.Context, name string) (*Category, error) {
	query := `
		SELECT id, name, slug, description, image_url, parent_id, is_active, sort_order, created_at
		FROM categories
		WHERE name = $1
	`
	var c Category
	err := s.db.QueryRow(ctx, query, name).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL,
		&c.ParentID, &c.IsActive, &c.SortOrder, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("category '%s' not found", name), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get category", err)
	}
	return &c, nil
}

func (s *PgxStore) Create(ctx context.Context, category *Category) (*Category, error) {
	query := `
		INSERT INTO categories (name, slug, description, image_url, parent_id, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		category.Name, category.Slug, category.Description, category.ImageURL,
		category.ParentID, category.IsActive, category.SortOrder,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return nil, translateWriteError(err, "failed to create category")
	}
	return category, nil
}

// translateWriteError maps constraint violations raised by category writes to
// caller-facing errors.
func translateWriteError(err error, fallback string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return apperror.NewConflictError("category slug already exists", nil)
			}
			return apperror.NewConflictError("category name already exists", nil)
		case pgCheckViolation:
			if pgErr.ConstraintName == "categories_no_self_parent" {
				return apperror.NewValidationError("category cannot be its own parent", nil)
			}
		}
	}
	return apperror.NewDatabaseError(fallback, err)
}

func (s *PgxStore) SetParent(ctx context.Context, id int64, parentID *int64) error {
	tag, err := s.db.Exec(ctx, `UPDATE categories SET parent_id = $1 WHERE id = $2`, parentID, id)
	if err != nil {
		return translateWriteError(err, "failed to update category parent")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("category %d not found", id), nil)
	}
	return nil
}

func (s *PgxStore) ListActive(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name, slug, description, image_url, parent_id, is_active, sort_order, created_at
		FROM categories
		WHERE is_active
		ORDER BY sort_order, name
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list categories", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL,
			&c.ParentID, &c.IsActive, &c.SortOrder, &c.CreatedAt,
		); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read categories", err)
	}
	return categories, nil
}
