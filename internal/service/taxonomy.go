package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/DukeRupert/blog/internal/domain"
	"github.com/DukeRupert/blog/internal/repository"
)

// TaxonomyService defines the interface for category and tag operations.
type TaxonomyService interface {
	// GetCategory retrieves a category by ID.
	// Returns domain.ENOTFOUND if the category does not exist.
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// GetTag retrieves a tag by ID.
	// Returns domain.ENOTFOUND if the tag does not exist.
	GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// ListCategories returns all categories with their post counts, by name.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ListTags returns all tags with their post counts, by name.
	ListTags(ctx context.Context) ([]domain.Tag, error)

	// CreateCategory creates a category.
	// Returns domain.ECONFLICT if the name is taken.
	CreateCategory(ctx context.Context, params domain.CreateCategoryParams) (*domain.Category, error)

	// CreateTag creates a tag.
	// Returns domain.ECONFLICT if the name is taken.
	CreateTag(ctx context.Context, params domain.CreateTagParams) (*domain.Tag, error)
}

// taxonomyService implements the TaxonomyService interface.
type taxonomyService struct {
	queries repository.Querier
	logger  *slog.Logger
}

// NewTaxonomyService creates a new TaxonomyService.
func NewTaxonomyService(queries repository.Querier, logger *slog.Logger) TaxonomyService {
	return &taxonomyService{
		queries: queries,
		logger:  logger,
	}
}

func (s *taxonomyService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	const op = "category.get"

	row, err := s.queries.GetCategory(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "category", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get category")
	}

	return &domain.Category{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

func (s *taxonomyService) GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	const op = "tag.get"

	row, err := s.queries.GetTag(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "tag", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get tag")
	}

	tag := toTag(row)
	return &tag, nil
}

func (s *taxonomyService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "category.list"

	rows, err := s.queries.ListCategoriesWithPostCount(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list categories")
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, domain.Category{
			ID:        row.ID,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
			PostCount: row.PostCount,
		})
	}
	return categories, nil
}

func (s *taxonomyService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	const op = "tag.list"

	rows, err := s.queries.ListTagsWithPostCount(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list tags")
	}

	tags := make([]domain.Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, domain.Tag{
			ID:        row.ID,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
			PostCount: row.PostCount,
		})
	}
	return tags, nil
}

func (s *taxonomyService) CreateCategory(ctx context.Context, params domain.CreateCategoryParams) (*domain.Category, error) {
	const op = "category.create"

	params.Name = strings.TrimSpace(params.Name)
	if err := validateStruct(op, params); err != nil {
		return nil, err
	}

	row, err := s.queries.CreateCategory(ctx, params.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict(op, fmt.Sprintf("category %q already exists", params.Name))
		}
		return nil, domain.Internal(err, op, "failed to create category")
	}

	s.logger.Info("category created", "category_id", row.ID, "name", row.Name)
	return &domain.Category{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

func (s *taxonomyService) CreateTag(ctx context.Context, params domain.CreateTagParams) (*domain.Tag, error) {
	const op = "tag.create"

	params.Name = strings.TrimSpace(params.Name)
	if err := validateStruct(op, params); err != nil {
		return nil, err
	}

	row, err := s.queries.CreateTag(ctx, params.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict(op, fmt.Sprintf("tag %q already exists", params.Name))
		}
		return nil, domain.Internal(err, op, "failed to create tag")
	}

	s.logger.Info("tag created", "tag_id", row.ID, "name", row.Name)
	tag := toTag(row)
	return &tag, nil
}
