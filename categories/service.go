package categories

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/user/audiostream-go/apperror"
)

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a category name: lowercase, strip everything
// but letters, digits, spaces and hyphens, then collapse whitespace and runs
// of hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugSpaceRe.ReplaceAllString(slug, "-")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// NewCategoryInput describes a category to create.
type NewCategoryInput struct {
	Name        string
	Slug        string // derived from Name when empty
	Description *string
	ParentID    *int64
	SortOrder   int
}

// Service holds category business logic on top of a Store.
type Service struct {
	store Store
}

// NewService creates a category Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListActive returns active categories ordered by sort order.
func (s *Service) ListActive(ctx context.Context) ([]Category, error) {
	return s.store.ListActive(ctx)
}

// Create validates and persists a new category. A category cannot be its own
// parent; the table constraint rejects a direct self-reference before the row
// exists, and longer reference cycles are not checked.
func (s *Service) Create(ctx context.Context, input NewCategoryInput) (*Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError("category name is required", nil)
	}
	if len(name) > 50 {
		return nil, apperror.NewValidationError("category name cannot exceed 50 characters", nil)
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, apperror.NewValidationError("category name yields an empty slug", nil)
	}

	category := &Category{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		ParentID:    input.ParentID,
		IsActive:    true,
		SortOrder:   input.SortOrder,
	}

	return s.store.Create(ctx, category)
}

// SetParent re-parents a category, rejecting an immediate self-reference.
func (s *Service) SetParent(ctx context.Context, id int64, parentID *int64) error {
	if parentID != nil && *parentID == id {
		return apperror.NewValidationError("category cannot be its own parent", nil)
	}
	return s.store.SetParent(ctx, id, parentID)
}

// FindOrCreate returns the category with the given name, creating it with a
// generated slug and default description when absent.
func (s *Service) FindOrCreate(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Uncategorized"
	}

	category, err := s.store.FindByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	description := fmt.Sprintf("%s music and audio", name)
	return s.Create(ctx, NewCategoryInput{
		Name:        name,
		Description: &description,
	})
}
