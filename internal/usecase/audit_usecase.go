package usecase

import (
	"context"

	"census-gateway/internal/converter"
	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/domain/entity"
	"census-gateway/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultAuditLogLimit = 200

type AuditUsecase interface {
	ListAuditLogs(ctx context.Context, limit int) ([]dto.AuditLogResponse, error)
	RecordExport(ctx context.Context, userID uuid.UUID)
}

type auditUsecase struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditUsecase(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditUsecase {
	return &auditUsecase{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (u *auditUsecase) ListAuditLogs(ctx context.Context, limit int) ([]dto.AuditLogResponse, error) {
	if limit <= 0 || limit > defaultAuditLogLimit {
		limit = defaultAuditLogLimit
	}

	logs, err := u.auditRepo.FindAll(u.db.WithContext(ctx), limit)
	if err != nil {
		u.log.Warnf("Failed to list audit logs: %+v", err)
		return nil, err
	}
	return converter.AuditLogsToResponses(logs), nil
}

// RecordExport notes a census download on the audit trail. A failed write
// never blocks the download itself.
func (u *auditUsecase) RecordExport(ctx context.Context, userID uuid.UUID) {
	entry := &entity.AuditLog{
		UserID: &userID,
		Action: entity.AuditActionCensusExport,
	}
	if err := u.auditRepo.Create(u.db.WithContext(ctx), entry); err != nil {
		u.log.Warnf("Failed to record export audit entry: %+v", err)
	}
}
