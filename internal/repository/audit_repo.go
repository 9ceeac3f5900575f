package repository

import (
	"context"

	"task_manager/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores the entry and fills in its id and timestamp.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	details := entry.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO audit_logs (user_id, action, category, details, ip, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		entry.UserID, entry.Action, entry.Category, details, entry.IP, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
	return mapErr("create audit log", err)
}

// List returns matching entries, newest first.
func (r *AuditRepository) List(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, action, category, details, ip, user_agent, created_at
		 FROM audit_logs
		 WHERE ($1::text = '' OR user_id = $1)
		   AND ($2::text = '' OR category = $2)
		   AND ($3::text = '' OR action = $3)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $4`,
		f.UserID, f.Category, f.Action, f.Limit,
	)
	if err != nil {
		return nil, mapErr("list audit logs", err)
	}
	logs, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.AuditLog])
	if err != nil {
		return nil, mapErr("scan audit logs", err)
	}
	return logs, nil
}
