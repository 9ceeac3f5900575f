package repository

import (
	"context"

	"task_manager/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) query(ctx context.Context, op, sql string, args ...any) ([]*domain.Comment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var res []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (id, task_id, text) VALUES ($1, $2, $3) RETURNING created_at`,
		c.ID, c.TaskID, c.Text,
	).Scan(&c.CreatedAt)
	return mapErr("create comment", err)
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.QueryRow(ctx,
		`SELECT id, task_id, text, created_at FROM comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.TaskID, &c.Text, &c.CreatedAt)
	if err != nil {
		return nil, mapErr("get comment", err)
	}
	return &c, nil
}

func (r *CommentRepository) List(ctx context.Context) ([]*domain.Comment, error) {
	return r.query(ctx, "list comments",
		`SELECT id, task_id, text, created_at FROM comments ORDER BY created_at, id`)
}

func (r *CommentRepository) ListByTasks(ctx context.Context, taskIDs []string) ([]*domain.Comment, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx, "list task comments",
		`SELECT id, task_id, text, created_at FROM comments WHERE task_id = ANY($1) ORDER BY created_at, id`,
		taskIDs)
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) error {
	tag, err := r.db.Exec(ctx, `UPDATE comments SET text = $2 WHERE id = $1`, c.ID, c.Text)
	return execOne("update comment", tag, err)
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return execOne("delete comment", tag, err)
}

func (r *CommentRepository) DeleteByTask(ctx context.Context, taskID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM comments WHERE task_id = $1`, taskID)
	return mapErr("delete task comments", err)
}
