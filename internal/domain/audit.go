package domain

import "time"

// AuditLog records a security-relevant action
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    string                 `db:"user_id" json:"userId"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"createdAt"`
}

// AuditFilter narrows an audit listing. Empty fields match everything.
type AuditFilter struct {
	UserID   string
	Category string
	Action   string
	Limit    int
}

const (
	AuditCategoryAuth     = "auth"
	AuditCategoryTask     = "task"
	AuditCategoryCategory = "category"
	AuditCategoryBusiness = "business"
	AuditCategoryAdmin    = "admin"
)

const (
	AuditActionLogin          = "login"
	AuditActionRegister       = "register"
	AuditActionPasswordChange = "password_change"

	AuditActionTaskDelete = "task_delete"

	AuditActionCategoryDelete = "category_delete"

	AuditActionBusinessCreate = "business_create"
	AuditActionBusinessDelete = "business_delete"
	AuditActionBusinessStatus = "business_status"

	AuditActionUserDelete = "user_delete"
)
