package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/storage"
)

// CategoryService validates and persists categories.
type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

func (s *CategoryService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}
	return s.storage.CreateCategory(ctx, c)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate category: %w", err)
	}
	return s.storage.UpdateCategory(ctx, c)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.storage.DeleteCategory(ctx, id)
}

func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (core.Category, error) {
	return s.storage.GetCategory(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context, t core.CategoryType) ([]core.Category, error) {
	if t != "" && !t.Valid() {
		return nil, fmt.Errorf("category type %q: %w", t, core.ErrInvalidCategoryType)
	}
	return s.storage.ListCategories(ctx, t)
}
