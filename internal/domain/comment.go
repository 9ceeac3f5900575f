package domain

import "time"

type Comment struct {
	ID        string    `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	TaskID    string    `db:"task_id" json:"taskId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
