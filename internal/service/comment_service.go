package service

import (
	"context"
	"errors"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/repository"

	"github.com/google/uuid"
)

type CommentService struct {
	comments repository.CommentRepo
	tasks    repository.TaskRepo
}

func NewCommentService(comments repository.CommentRepo, tasks repository.TaskRepo) *CommentService {
	return &CommentService{comments: comments, tasks: tasks}
}

func (s *CommentService) Create(ctx context.Context, taskID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if err := requireFields(
		field{"text", text != ""},
		field{"taskId", has(taskID)},
	); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, storeErr("get task", err, domain.ErrTaskNotFound, nil)
	}

	c := &domain.Comment{ID: uuid.NewString(), TaskID: taskID, Text: text}
	if err := s.comments.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeErr("create comment", err, nil, nil)
	}
	return c, nil
}

func (s *CommentService) List(ctx context.Context) ([]*domain.Comment, error) {
	cs, err := s.comments.List(ctx)
	if err != nil {
		return nil, storeErr("list comments", err, nil, nil)
	}
	return nonNilComments(cs), nil
}

func (s *CommentService) Get(ctx context.Context, id string) (*domain.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get comment", err, domain.ErrCommentNotFound, nil)
	}
	return c, nil
}

func (s *CommentService) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	cs, err := s.comments.ListByTasks(ctx, []string{taskID})
	if err != nil {
		return nil, storeErr("list task comments", err, nil, nil)
	}
	return nonNilComments(cs), nil
}

func (s *CommentService) Update(ctx context.Context, id, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if err := requireFields(field{"text", text != ""}); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Text = text
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, storeErr("update comment", err, domain.ErrCommentNotFound, nil)
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		return storeErr("delete comment", err, domain.ErrCommentNotFound, nil)
	}
	return nil
}

func nonNilComments(cs []*domain.Comment) []*domain.Comment {
	if cs == nil {
		return []*domain.Comment{}
	}
	return cs
}
