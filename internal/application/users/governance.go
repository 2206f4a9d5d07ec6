package users

import (
	"context"
	"errors"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/constants"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// validateRoleChange loads the target and enforces the role rules:
// same tenant, no self-modification, at least one ADMIN left.
func validateRoleChange(tx *gorm.DB, in RoleChange) (*domain.User, error) {
	if !constants.IsValidRole(in.Role) {
		return nil, apperr.Validation("Invalid role: %s", in.Role)
	}
	var target domain.User
	if err := tx.Where("user_id = ? AND tenant_id = ?", in.TargetUserID, in.TenantID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Target user not found")
		}
		return nil, err
	}
	if in.ActorUserID == in.TargetUserID {
		return nil, apperr.Forbidden("Users cannot modify their own role")
	}
	if target.Role == constants.Admin && in.Role != constants.Admin {
		var admins int64
		if err := tx.Model(&domain.User{}).
			Where("tenant_id = ? AND role = ?", in.TenantID, constants.Admin).
			Count(&admins).Error; err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, apperr.Precondition("Tenant must have at least one ADMIN")
		}
	}
	return &target, nil
}

// destroySessions deletes every session tracked under user_sessions:<id>.
func destroySessions(ctx context.Context, rdb *redis.Client, userID string) {
	key := "user_sessions:" + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil || len(sessionIDs) == 0 {
		rdb.Del(ctx, key)
		return
	}
	for _, sid := range sessionIDs {
		rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
	}
	rdb.Del(ctx, key)
}
