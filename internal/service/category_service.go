package service

import (
	"context"
	"errors"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/repository"

	"github.com/google/uuid"
)

type CategoryService struct {
	categories repository.CategoryRepo
	tasks      repository.TaskRepo
	audit      *AuditService
}

func NewCategoryService(categories repository.CategoryRepo, tasks repository.TaskRepo, audit *AuditService) *CategoryService {
	return &CategoryService{categories: categories, tasks: tasks, audit: audit}
}

func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if err := requireFields(field{"name", name != ""}); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	c := &domain.Category{ID: uuid.NewString(), Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, storeErr("create category", err, nil, domain.ErrCategoryExists)
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	cs, err := s.categories.List(ctx)
	if err != nil {
		return nil, storeErr("list categories", err, nil, nil)
	}
	if cs == nil {
		cs = []*domain.Category{}
	}
	return cs, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get category", err, domain.ErrCategoryNotFound, nil)
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if err := requireFields(field{"name", name != ""}); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, c.ID); err != nil {
		return nil, err
	}

	c.Name = name
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, storeErr("update category", err, domain.ErrCategoryNotFound, domain.ErrCategoryExists)
	}
	return c, nil
}

// Delete refuses while any task still references the category.
func (s *CategoryService) Delete(ctx context.Context, id, requesterID string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.tasks.CountByCategory(ctx, c.ID)
	if err != nil {
		return storeErr("count tasks by category", err, nil, nil)
	}
	if n > 0 {
		return domain.ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return domain.ErrCategoryInUse
		}
		return storeErr("delete category", err, domain.ErrCategoryNotFound, nil)
	}

	s.audit.Log(ctx, requesterID, domain.AuditActionCategoryDelete, domain.AuditCategoryCategory, map[string]interface{}{
		"category_id": c.ID,
		"name":        c.Name,
	})
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.categories.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrCategoryExists
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return storeErr("get category by name", err, nil, nil)
	}
	return nil
}
