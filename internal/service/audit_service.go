package service

import (
	"context"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
)

// AuditService handles audit logging. A nil *AuditService discards entries.
type AuditService struct {
	repo repository.AuditRepo
}

func NewAuditService(repo repository.AuditRepo) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry. Failures are logged, never returned.
func (s *AuditService) Log(ctx context.Context, userID, action, category string, details map[string]interface{}) {
	s.LogWithRequest(ctx, userID, action, category, "", "", details)
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID, action, category, ip, userAgent string, details map[string]interface{}) {
	if s == nil {
		return
	}
	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.WithContext(ctx).Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

func (s *AuditService) LogLogin(ctx context.Context, userID, ip, userAgent string) {
	s.LogWithRequest(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, ip, userAgent, nil)
}

// LogAdminAction records an action an admin took on someone else's resource.
func (s *AuditService) LogAdminAction(ctx context.Context, adminID, action, targetUserID string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["admin_id"] = adminID
	details["target_user_id"] = targetUserID

	s.Log(ctx, targetUserID, action, domain.AuditCategoryAdmin, details)
}

// List returns entries newest first. The limit is clamped to 1..500 (default 50).
func (s *AuditService) List(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditLog, error) {
	f.Limit = clampLimit(f.Limit)
	logs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, storeErr("list audit logs", err, nil, nil)
	}
	return logs, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 500:
		return 500
	}
	return limit
}
