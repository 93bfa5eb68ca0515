package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pos-backend/internal/repository"
)

type AuditLogResponse struct {
	ID           uint            `json:"id"`
	OperatorName string          `json:"operator_name"`
	Action       string          `json:"action"`
	EntityID     string          `json:"entity_id"`
	Details      json.RawMessage `json:"details"`
	CreatedAt    string          `json:"created_at"`
}

// AuditService exposes the read side of the audit trail. Writes happen inside
// the owning service's transaction, not here.
type AuditService interface {
	List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.auditRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	result := make([]AuditLogResponse, 0, len(logs))
	for _, entry := range logs {
		details := json.RawMessage(entry.Details)
		if !json.Valid(details) {
			details = json.RawMessage("{}")
		}
		result = append(result, AuditLogResponse{
			ID:           entry.ID,
			OperatorName: entry.OperatorName,
			Action:       entry.Action,
			EntityID:     entry.EntityID,
			Details:      details,
			CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}
