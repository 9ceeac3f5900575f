package repository

import (
	"context"
	"time"

	"task_manager/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, status, category_id, parent_id, lat, lng, end_time, user_id, created_at, notified_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.CategoryID,
		&t.ParentID,
		&t.Lat,
		&t.Lng,
		&t.EndTime,
		&t.UserID,
		&t.CreatedAt,
		&t.NotifiedAt,
	); err != nil {
		return nil, err
	}
	if t.EndTime != nil {
		utc := t.EndTime.UTC()
		t.EndTime = &utc
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, op, sql string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return res, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (id, title, description, status, category_id, parent_id, lat, lng, end_time, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		t.ID, t.Title, t.Description, t.Status, t.CategoryID, t.ParentID, t.Lat, t.Lng, t.EndTime, t.UserID,
	).Scan(&t.CreatedAt)
	return mapErr("create task", err)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get task", err)
	}
	return t, nil
}

func (r *TaskRepository) ListRoots(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	if ownerID == "" {
		return r.queryTasks(ctx, "list root tasks",
			`SELECT `+taskColumns+` FROM tasks WHERE parent_id IS NULL ORDER BY created_at, seq`)
	}
	return r.queryTasks(ctx, "list user root tasks",
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id IS NULL AND user_id = $1 ORDER BY created_at, seq`,
		ownerID)
}

func (r *TaskRepository) ListChildren(ctx context.Context, parentIDs []string) ([]*domain.Task, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	return r.queryTasks(ctx, "list subtasks",
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id = ANY($1) ORDER BY created_at, seq`,
		parentIDs)
}

func (r *TaskRepository) ListByCategory(ctx context.Context, categoryID, ownerID string) ([]*domain.Task, error) {
	return r.queryTasks(ctx, "list tasks by category",
		`SELECT `+taskColumns+` FROM tasks WHERE category_id = $1 AND user_id = $2 ORDER BY created_at, seq`,
		categoryID, ownerID)
}

func (r *TaskRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE category_id = $1`, categoryID).Scan(&n)
	return n, mapErr("count tasks by category", err)
}

// ListOverdue returns unfinished tasks past their end time that have not been notified yet.
func (r *TaskRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
	return r.queryTasks(ctx, "list overdue tasks",
		`SELECT `+taskColumns+` FROM tasks
		 WHERE end_time IS NOT NULL AND end_time <= $1 AND status <> 'done' AND notified_at IS NULL
		 ORDER BY end_time
		 LIMIT $2`,
		now, limit)
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, status = $4, category_id = $5, lat = $6, lng = $7, end_time = $8, notified_at = $9
		 WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Status, t.CategoryID, t.Lat, t.Lng, t.EndTime, t.NotifiedAt)
	return execOne("update task", tag, err)
}

func (r *TaskRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE tasks SET notified_at = $2 WHERE id = $1`, id, at)
	return execOne("mark task notified", tag, err)
}

// DeleteChildren removes direct children; deeper levels and comments go by cascade.
func (r *TaskRepository) DeleteChildren(ctx context.Context, parentID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE parent_id = $1`, parentID)
	return mapErr("delete subtasks", err)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return execOne("delete task", tag, err)
}

func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1`, ownerID)
	return mapErr("delete user tasks", err)
}
