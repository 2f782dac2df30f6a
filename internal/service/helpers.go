package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go-account-backend/internal/domain"
)

// persistErr 底层写失败统一包成 ErrPersistence，原始错误保留在链上
func persistErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrPersistence, err))
}

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动差异
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}

// resolveRole ID 优先、名称兜底；两者都落空记一条 error 日志再返回 ErrRoleNotFound
func resolveRole(ctx context.Context, roles domain.RoleRepository, ident domain.RoleIdentifier, log *zap.Logger) (*domain.Role, error) {
	if ident.ID != 0 {
		role, err := roles.FindByID(ctx, ident.ID)
		if err != nil {
			return nil, persistErr("resolve role", err)
		}
		if role != nil {
			return role, nil
		}
	}
	if ident.Name != "" {
		role, err := roles.FindByName(ctx, ident.Name)
		if err != nil {
			return nil, persistErr("resolve role", err)
		}
		if role != nil {
			return role, nil
		}
	}
	log.Error("role does not exist", zap.String("identifier", ident.String()))
	return nil, fmt.Errorf("role %q: %w", ident.String(), domain.ErrRoleNotFound)
}
