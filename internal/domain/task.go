package domain

import "time"

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is one node of a user's task tree. Subtasks, Comments and
// CategoryName are derived on read.
type Task struct {
	ID           string     `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description"`
	Status       TaskStatus `db:"status" json:"status"`
	CategoryID   *string    `db:"category_id" json:"categoryId"`
	CategoryName *string    `db:"-" json:"categoryName,omitempty"`
	ParentID     *string    `db:"parent_id" json:"parentId"`
	Lat          *float64   `db:"lat" json:"lat"`
	Lng          *float64   `db:"lng" json:"lng"`
	EndTime      *time.Time `db:"end_time" json:"endTime"`
	UserID       string     `db:"user_id" json:"userId"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	NotifiedAt   *time.Time `db:"notified_at" json:"-"`

	Subtasks []*Task    `db:"-" json:"subtasks"`
	Comments []*Comment `db:"-" json:"comments"`
}

func (t *Task) IsRoot() bool { return t.ParentID == nil }

// TaskInput is the body of a create request. Subtasks are created
// recursively under the new task.
type TaskInput struct {
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Status      TaskStatus  `json:"status"`
	CategoryID  *string     `json:"categoryId"`
	Lat         *float64    `json:"lat"`
	Lng         *float64    `json:"lng"`
	EndTime     *string     `json:"endTime"`
	Subtasks    []TaskInput `json:"subtasks"`
}

// TaskPatch is a partial update. Nil fields are left untouched; a non-nil
// Subtasks replaces every direct child. An empty Description, CategoryID or
// EndTime clears that column.
type TaskPatch struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *TaskStatus  `json:"status"`
	CategoryID  *string      `json:"categoryId"`
	Lat         *float64     `json:"lat"`
	Lng         *float64     `json:"lng"`
	EndTime     *string      `json:"endTime"`
	Subtasks    *[]TaskInput `json:"subtasks"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.CategoryID == nil && p.Lat == nil && p.Lng == nil &&
		p.EndTime == nil && p.Subtasks == nil
}

// TaskEvent is pushed to the owner's live connections.
type TaskEvent struct {
	Type   string `json:"type"`
	TaskID string `json:"taskId"`
	UserID string `json:"-"`
	Task   *Task  `json:"task,omitempty"`
}

const (
	EventTaskCreated      = "task.created"
	EventTaskUpdated      = "task.updated"
	EventTaskDeleted      = "task.deleted"
	EventTaskSubtaskAdded = "task.subtask_added"
	EventTaskDue          = "task.due"
)
