package usecase

import (
	"context"
	"fmt"

	"go-medical-appointment/internal/converter"
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/repository"
	"go-medical-appointment/internal/domain/scheduling"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrAuditLogNotFound = fmt.Errorf("audit log %w", scheduling.ErrNotFound)
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, page, limit int) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, page, limit int) (*dto.AuditLogListResponse, error) {
	page, limit, offset := normalizePage(page, limit)

	g, gctx := errgroup.WithContext(ctx)
	var response dto.AuditLogListResponse
	g.Go(func() error {
		logs, err := u.auditLogRepo.FindAll(u.db.WithContext(gctx), limit, offset)
		if err != nil {
			return err
		}
		response.Logs = converter.AuditLogsToResponses(logs)
		return nil
	})
	g.Go(func() error {
		total, err := u.auditLogRepo.Count(u.db.WithContext(gctx))
		response.Total = total
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	response.Page, response.Limit = page, limit
	return &response, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
