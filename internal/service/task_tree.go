package service

import (
	"context"

	"task_manager/internal/domain"
)

// hydrate attaches subtrees, comments and category names to roots in place.
// Descendants are fetched one level per query; the id index doubles as the
// adjacency lookup for attaching children to their parents.
func (s *TaskService) hydrate(ctx context.Context, roots []*domain.Task) error {
	if len(roots) == 0 {
		return nil
	}

	index := make(map[string]*domain.Task, len(roots))
	all := make([]*domain.Task, 0, len(roots))
	level := make([]string, 0, len(roots))
	for _, t := range roots {
		t.Subtasks = []*domain.Task{}
		t.Comments = []*domain.Comment{}
		index[t.ID] = t
		all = append(all, t)
		level = append(level, t.ID)
	}

	rounds := 0
	for len(level) > 0 {
		rounds++
		children, err := s.tasks.ListChildren(ctx, level)
		if err != nil {
			return storeErr("list subtasks", err, nil, nil)
		}

		next := make([]string, 0, len(children))
		for _, c := range children {
			// a row already indexed would close a cycle
			if _, seen := index[c.ID]; seen || c.ParentID == nil {
				continue
			}
			parent, ok := index[*c.ParentID]
			if !ok {
				continue
			}
			c.Subtasks = []*domain.Task{}
			c.Comments = []*domain.Comment{}
			parent.Subtasks = append(parent.Subtasks, c)
			index[c.ID] = c
			all = append(all, c)
			next = append(next, c.ID)
		}
		level = next
	}
	TaskTreeNodes.Observe(float64(len(all)))
	TaskTreeLevels.Observe(float64(rounds))

	ids := make([]string, 0, len(all))
	categoryIDs := make([]string, 0)
	seenCategory := make(map[string]bool)
	for _, t := range all {
		ids = append(ids, t.ID)
		if t.CategoryID != nil && !seenCategory[*t.CategoryID] {
			seenCategory[*t.CategoryID] = true
			categoryIDs = append(categoryIDs, *t.CategoryID)
		}
	}

	comments, err := s.comments.ListByTasks(ctx, ids)
	if err != nil {
		return storeErr("list comments", err, nil, nil)
	}
	for _, c := range comments {
		if t, ok := index[c.TaskID]; ok {
			t.Comments = append(t.Comments, c)
		}
	}

	if len(categoryIDs) > 0 {
		names, err := s.categories.NamesByIDs(ctx, categoryIDs)
		if err != nil {
			return storeErr("category names", err, nil, nil)
		}
		for _, t := range all {
			if t.CategoryID == nil {
				continue
			}
			if name, ok := names[*t.CategoryID]; ok {
				t.CategoryName = &name
			}
		}
	}
	return nil
}
