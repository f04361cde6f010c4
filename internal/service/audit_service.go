package service

import (
	"context"

	"salesops/internal/model"
	"salesops/internal/policy"
	"salesops/internal/repository"
)

// AuditService exposes the audit trail to the admin console.
type AuditService interface {
	List(ctx context.Context, p policy.Principal, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, p policy.Principal, page, limit int) ([]model.AuditLog, int64, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}
