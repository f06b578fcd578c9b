package usecase

import (
	"context"
	"fmt"

	"go-medical-appointment/internal/converter"
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/internal/domain/repository"
	"go-medical-appointment/internal/domain/scheduling"
	"go-medical-appointment/internal/service"
	"go-medical-appointment/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrCannotDeactivateAdmin = fmt.Errorf("admin accounts cannot be deactivated: %w", scheduling.ErrForbidden)

// UserUsecase holds admin operations over user accounts
type UserUsecase interface {
	// ToggleStatus flips the account's active flag. A non-empty role restricts
	// the target to that role; any other account is reported as not found.
	ToggleStatus(ctx context.Context, actorID, userID uuid.UUID, role string) (*dto.UserStatusResponse, error)
}

type userUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
	redisClient  *redis.Client
}

func NewUserUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	redisClient *redis.Client,
) UserUsecase {
	return &userUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
		redisClient:  redisClient,
	}
}

func (u *userUsecase) ToggleStatus(ctx context.Context, actorID, userID uuid.UUID, role string) (*dto.UserStatusResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil || (role != "" && entity.RoleNameFromID(user.RoleID) != role) {
		return nil, ErrUserNotFound
	}
	if user.RoleID == entity.RoleIDAdmin {
		return nil, ErrCannotDeactivateAdmin
	}

	was := user.Active()
	active := !was
	if err := u.userRepo.UpdateActive(tx, userID, active); err != nil {
		u.log.Warnf("Failed to update status of user %s: %+v", userID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionUserStatus, "user", userID.String(),
		entity.JSON{"is_active": was}, entity.JSON{"is_active": active}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// a disabled account loses its sessions at once
	if !active {
		if _, err := revokeTokens(ctx, u.redisClient, jwt.AccessTokenPattern(userID), jwt.RefreshTokenPattern(userID)); err != nil {
			u.log.Warnf("Failed to revoke tokens of %s: %+v", userID, err)
		}
	}

	user.IsActive = &active
	u.log.Infof("User %s active=%t by %s", userID, active, actorID)
	return converter.UserToStatusResponse(user), nil
}
