package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/repository"

	"github.com/google/uuid"
)

// TaskService owns the task hierarchy: recursive creation, subtree loading,
// subtask replacement and owner-only access.
type TaskService struct {
	tasks      repository.TaskRepo
	categories repository.CategoryRepo
	comments   repository.CommentRepo
	events     EventPublisher
	audit      *AuditService
	maxDepth   int
}

type TaskOption func(*TaskService)

func WithTaskEvents(p EventPublisher) TaskOption {
	return func(s *TaskService) {
		if p != nil {
			s.events = p
		}
	}
}

func WithTaskAudit(a *AuditService) TaskOption {
	return func(s *TaskService) { s.audit = a }
}

// WithMaxDepth limits how many levels a tree may have. Zero means no limit.
func WithMaxDepth(n int) TaskOption {
	return func(s *TaskService) { s.maxDepth = n }
}

func NewTaskService(tasks repository.TaskRepo, categories repository.CategoryRepo, comments repository.CommentRepo, opts ...TaskOption) *TaskService {
	s := &TaskService{
		tasks:      tasks,
		categories: categories,
		comments:   comments,
		events:     noopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTask validates the whole input tree, then inserts it top-down with
// every node owned by ownerID.
func (s *TaskService) CreateTask(ctx context.Context, in domain.TaskInput, ownerID string) (*domain.Task, error) {
	if err := s.validateTree(ctx, []domain.TaskInput{in}, 1, true); err != nil {
		return nil, err
	}

	t, err := s.insert(ctx, in, ownerID, nil)
	if err != nil {
		return nil, err
	}

	if err := s.hydrate(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	s.events.Publish(domain.TaskEvent{Type: domain.EventTaskCreated, TaskID: t.ID, UserID: ownerID, Task: t})
	return t, nil
}

// GetTaskByID returns the task with its full subtree. Only the owner may read it.
func (s *TaskService) GetTaskByID(ctx context.Context, id, requesterID string) (*domain.Task, error) {
	t, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetAllTasks lists every root task across all owners.
func (s *TaskService) GetAllTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.roots(ctx, "")
}

// GetUsersTasks lists the owner's root tasks.
func (s *TaskService) GetUsersTasks(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	return s.roots(ctx, ownerID)
}

func (s *TaskService) roots(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	roots, err := s.tasks.ListRoots(ctx, ownerID)
	if err != nil {
		return nil, storeErr("list tasks", err, nil, nil)
	}
	if roots == nil {
		roots = []*domain.Task{}
	}
	if err := s.hydrate(ctx, roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// UpdateTask applies the present fields of patch. A present Subtasks list
// replaces all direct children of the task.
func (s *TaskService) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch, requesterID string) (*domain.Task, error) {
	t, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		changed, err := s.applyPatch(ctx, t, patch)
		if err != nil {
			return nil, err
		}

		if patch.Subtasks != nil {
			depth, err := s.depthOf(ctx, t)
			if err != nil {
				return nil, err
			}
			if err := s.validateTree(ctx, *patch.Subtasks, depth+1, false); err != nil {
				return nil, err
			}
		}

		if changed {
			if err := s.tasks.Update(ctx, t); err != nil {
				if errors.Is(err, repository.ErrReferenced) {
					return nil, domain.ErrCategoryNotFound
				}
				return nil, storeErr("update task", err, domain.ErrTaskNotFound, nil)
			}
		}

		if patch.Subtasks != nil {
			if err := s.tasks.DeleteChildren(ctx, t.ID); err != nil {
				return nil, storeErr("replace subtasks", err, nil, nil)
			}
			for _, child := range *patch.Subtasks {
				if _, err := s.insert(ctx, child, t.UserID, &t.ID); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := s.hydrate(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		s.events.Publish(domain.TaskEvent{Type: domain.EventTaskUpdated, TaskID: t.ID, UserID: t.UserID, Task: t})
	}
	return t, nil
}

// DeleteTask removes the task's comments and the task; descendants follow by cascade.
func (s *TaskService) DeleteTask(ctx context.Context, id, requesterID string) error {
	t, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return err
	}

	if err := s.comments.DeleteByTask(ctx, t.ID); err != nil {
		return storeErr("delete task comments", err, nil, nil)
	}
	if err := s.tasks.Delete(ctx, t.ID); err != nil {
		return storeErr("delete task", err, domain.ErrTaskNotFound, nil)
	}

	s.audit.Log(ctx, requesterID, domain.AuditActionTaskDelete, domain.AuditCategoryTask, map[string]interface{}{
		"task_id": t.ID,
		"title":   t.Title,
	})
	s.events.Publish(domain.TaskEvent{Type: domain.EventTaskDeleted, TaskID: t.ID, UserID: t.UserID})
	return nil
}

// AddSubtask creates one child (with its own nested subtasks) under parentID
// and returns the refreshed parent.
func (s *TaskService) AddSubtask(ctx context.Context, parentID string, in domain.TaskInput, requesterID string) (*domain.Task, error) {
	parent, err := s.authorize(ctx, parentID, requesterID)
	if err != nil {
		return nil, err
	}
	depth, err := s.depthOf(ctx, parent)
	if err != nil {
		return nil, err
	}
	if err := s.validateTree(ctx, []domain.TaskInput{in}, depth+1, true); err != nil {
		return nil, err
	}

	child, err := s.insert(ctx, in, parent.UserID, &parent.ID)
	if err != nil {
		return nil, err
	}

	if err := s.hydrate(ctx, []*domain.Task{parent}); err != nil {
		return nil, err
	}
	s.events.Publish(domain.TaskEvent{Type: domain.EventTaskSubtaskAdded, TaskID: child.ID, UserID: parent.UserID, Task: parent})
	return parent, nil
}

// TasksByCategory lists the requester's tasks in a category without hydration.
func (s *TaskService) TasksByCategory(ctx context.Context, categoryID, requesterID string) ([]*domain.Task, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, storeErr("get category", err, domain.ErrCategoryNotFound, nil)
	}
	ts, err := s.tasks.ListByCategory(ctx, categoryID, requesterID)
	if err != nil {
		return nil, storeErr("list tasks by category", err, nil, nil)
	}
	if ts == nil {
		ts = []*domain.Task{}
	}
	return ts, nil
}

// authorize loads a task row and checks strict ownership. Admins get no override.
func (s *TaskService) authorize(ctx context.Context, id, requesterID string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get task", err, domain.ErrTaskNotFound, nil)
	}
	if t.UserID != requesterID {
		return nil, domain.ErrNotOwner
	}
	return t, nil
}

func (s *TaskService) insert(ctx context.Context, in domain.TaskInput, ownerID string, parentID *string) (*domain.Task, error) {
	t := &domain.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		CategoryID:  in.CategoryID,
		ParentID:    parentID,
		Lat:         in.Lat,
		Lng:         in.Lng,
		UserID:      ownerID,
	}
	if t.Status == "" {
		t.Status = domain.StatusTodo
	}
	if t.CategoryID != nil && *t.CategoryID == "" {
		t.CategoryID = nil
	}
	if in.EndTime != nil && *in.EndTime != "" {
		end, err := parseEndTime(*in.EndTime)
		if err != nil {
			return nil, err
		}
		t.EndTime = &end
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			switch {
			case t.CategoryID != nil:
				return nil, domain.ErrCategoryNotFound
			case parentID != nil:
				return nil, domain.ErrTaskNotFound
			}
		}
		return nil, storeErr("create task", err, nil, nil)
	}

	for _, sub := range in.Subtasks {
		if _, err := s.insert(ctx, sub, ownerID, &t.ID); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// validateTree checks every node before anything is written. depth is the
// level of the first node in inputs, roots being level 1. With requireStatus
// the nodes in inputs must carry a status; nested subtasks default to todo.
func (s *TaskService) validateTree(ctx context.Context, inputs []domain.TaskInput, depth int, requireStatus bool) error {
	categories := make(map[string]bool)
	if err := s.validateLevel(inputs, depth, requireStatus, categories); err != nil {
		return err
	}
	for id := range categories {
		if _, err := s.categories.GetByID(ctx, id); err != nil {
			return storeErr("get category", err, domain.ErrCategoryNotFound, nil)
		}
	}
	return nil
}

func (s *TaskService) validateLevel(inputs []domain.TaskInput, depth int, requireStatus bool, categories map[string]bool) error {
	for _, in := range inputs {
		if s.maxDepth > 0 && depth > s.maxDepth {
			return domain.ErrTaskTooDeep
		}
		if !has(in.Title) {
			return domain.Validation("Title is required")
		}
		if (requireStatus || in.Status != "") && !in.Status.Valid() {
			return errInvalidStatus
		}
		if in.EndTime != nil && *in.EndTime != "" {
			if _, err := parseEndTime(*in.EndTime); err != nil {
				return err
			}
		}
		if in.CategoryID != nil && *in.CategoryID != "" {
			categories[*in.CategoryID] = true
		}
		if err := s.validateLevel(in.Subtasks, depth+1, false, categories); err != nil {
			return err
		}
	}
	return nil
}

var errInvalidStatus = domain.Validation("Status must be one of: todo, in-progress, done")

// applyPatch copies present fields onto t and reports whether any column changed.
func (s *TaskService) applyPatch(ctx context.Context, t *domain.Task, p domain.TaskPatch) (bool, error) {
	changed := false
	if p.Title != nil {
		if !has(*p.Title) {
			return false, domain.Validation("Title is required")
		}
		t.Title = strings.TrimSpace(*p.Title)
		changed = true
	}
	if p.Description != nil {
		t.Description = p.Description
		if *p.Description == "" {
			t.Description = nil
		}
		changed = true
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return false, errInvalidStatus
		}
		t.Status = *p.Status
		changed = true
	}
	if p.CategoryID != nil {
		if *p.CategoryID == "" {
			t.CategoryID = nil
		} else {
			if _, err := s.categories.GetByID(ctx, *p.CategoryID); err != nil {
				return false, storeErr("get category", err, domain.ErrCategoryNotFound, nil)
			}
			t.CategoryID = p.CategoryID
		}
		changed = true
	}
	if p.Lat != nil {
		t.Lat = p.Lat
		changed = true
	}
	if p.Lng != nil {
		t.Lng = p.Lng
		changed = true
	}
	if p.EndTime != nil {
		if *p.EndTime == "" {
			t.EndTime = nil
		} else {
			end, err := parseEndTime(*p.EndTime)
			if err != nil {
				return false, err
			}
			t.EndTime = &end
		}
		// a moved deadline is eligible for a fresh notification
		t.NotifiedAt = nil
		changed = true
	}
	return changed, nil
}

// depthOf walks parent links up to the root. It only queries when a depth limit is set.
func (s *TaskService) depthOf(ctx context.Context, t *domain.Task) (int, error) {
	if s.maxDepth <= 0 {
		return 1, nil
	}
	depth := 1
	cur := t
	for cur.ParentID != nil {
		parent, err := s.tasks.GetByID(ctx, *cur.ParentID)
		if err != nil {
			return 0, storeErr("get parent task", err, domain.ErrTaskNotFound, nil)
		}
		depth++
		if depth > s.maxDepth {
			break
		}
		cur = parent
	}
	return depth, nil
}

// overdueScanAt is the clock used by OverdueTasks; replaced in tests.
var overdueScanAt = func() time.Time { return time.Now().UTC() }

// OverdueTasks returns unfinished tasks whose end time has passed and that have not been notified.
func (s *TaskService) OverdueTasks(ctx context.Context, limit int) ([]*domain.Task, error) {
	ts, err := s.tasks.ListOverdue(ctx, overdueScanAt(), limit)
	if err != nil {
		return nil, storeErr("list overdue tasks", err, nil, nil)
	}
	return ts, nil
}

// MarkNotified records that the owner was told about the task's deadline.
func (s *TaskService) MarkNotified(ctx context.Context, t *domain.Task) error {
	if err := s.tasks.MarkNotified(ctx, t.ID, overdueScanAt()); err != nil {
		return storeErr("mark task notified", err, nil, nil)
	}
	logger.WithContext(ctx).Debug("task deadline notified", "task_id", t.ID, "user_id", t.UserID)
	return nil
}

// PublishDue pushes a deadline event to the owner's live connections.
func (s *TaskService) PublishDue(t *domain.Task) {
	s.events.Publish(domain.TaskEvent{Type: domain.EventTaskDue, TaskID: t.ID, UserID: t.UserID, Task: t})
}
