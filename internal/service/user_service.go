package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"go-account-backend/internal/domain"
	"go-account-backend/pkg/utils"
)

// UserService 用户目录：账号 CRUD、口令管理、角色集维护
// 角色的存在性校验一律走角色仓库，不信任调用方传入的对象
type UserService struct {
	store domain.Store
	log   *zap.Logger
}

func NewUserService(store domain.Store, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// Create 用户名/邮箱先查重；初始角色与用户插入同一事务，任一失败全部丢弃
func (s *UserService) Create(ctx context.Context, username, email, password string, roles []domain.RoleIdentifier) (*domain.User, error) {
	if existing, err := s.store.Users().FindByUsername(ctx, username); err != nil {
		return nil, persistErr("find user", err)
	} else if existing != nil {
		s.log.Warn("username already exists", zap.String("username", username))
		return nil, fmt.Errorf("username %q: %w", username, domain.ErrDuplicateUser)
	}
	if existing, err := s.store.Users().FindByEmail(ctx, email); err != nil {
		return nil, persistErr("find user", err)
	} else if existing != nil {
		s.log.Warn("email already exists", zap.String("email", email))
		return nil, fmt.Errorf("email %q: %w", email, domain.ErrDuplicateUser)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{Username: username, Email: email, PasswordHash: hash}
	err = s.store.Transaction(ctx, func(tx domain.Store) error {
		if err := tx.Users().Create(ctx, u); err != nil {
			if isDupKey(err) {
				s.log.Warn("lost race creating user", zap.String("username", username))
				return fmt.Errorf("user %q: %w", username, domain.ErrDuplicateUser)
			}
			s.log.Error("create user failed", zap.String("username", username), zap.Error(err))
			return persistErr("create user", err)
		}
		for _, ident := range roles {
			role, err := resolveRole(ctx, tx.Roles(), ident, s.log)
			if err != nil {
				return err
			}
			if u.HasRole(role.Name) {
				return fmt.Errorf("role %q: %w", role.Name, domain.ErrRoleAlreadyAssigned)
			}
			if err := tx.Users().AddRole(ctx, u, role); err != nil {
				return persistErr("attach role", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.Uint("id", u.ID), zap.String("username", username))
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, persistErr("find user", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrUserNotFound)
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		return nil, persistErr("find user", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrUserNotFound)
	}
	return u, nil
}

// Resolve 纯数字先按 ID，查不到再当用户名
func (s *UserService) Resolve(ctx context.Context, identifier string) (*domain.User, error) {
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		if u, err := s.store.Users().FindByID(ctx, uint(id)); err != nil {
			return nil, persistErr("find user", err)
		} else if u != nil {
			return u, nil
		}
	}
	return s.GetByUsername(ctx, identifier)
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	users, total, err := s.store.Users().List(ctx, offset, limit)
	if err != nil {
		return nil, 0, persistErr("list users", err)
	}
	return users, total, nil
}

// SetPassword 重置口令，只换哈希，不碰其它字段
func (s *UserService) SetPassword(ctx context.Context, u *domain.User, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	if err := s.store.Users().Update(ctx, u); err != nil {
		s.log.Error("set password failed", zap.String("username", u.Username), zap.Error(err))
		return persistErr("set password", err)
	}
	s.log.Info("password set", zap.String("username", u.Username))
	return nil
}

// CheckPassword bcrypt 自带盐和常数时间比较
func (s *UserService) CheckPassword(u *domain.User, candidate string) bool {
	return utils.CheckPassword(candidate, u.PasswordHash)
}

func (s *UserService) AddRole(ctx context.Context, u *domain.User, ident domain.RoleIdentifier) (*domain.Role, error) {
	role, err := resolveRole(ctx, s.store.Roles(), ident, s.log)
	if err != nil {
		return nil, err
	}
	if u.HasRole(role.Name) {
		s.log.Error("role already assigned",
			zap.String("role", role.Name), zap.String("username", u.Username))
		return nil, fmt.Errorf("role %q: %w", role.Name, domain.ErrRoleAlreadyAssigned)
	}
	if err := s.store.Users().AddRole(ctx, u, role); err != nil {
		s.log.Error("attach role failed", zap.String("role", role.Name), zap.Error(err))
		return nil, persistErr("attach role", err)
	}
	s.log.Info("role added", zap.String("role", role.Name), zap.String("username", u.Username))
	return role, nil
}

func (s *UserService) RemoveRole(ctx context.Context, u *domain.User, ident domain.RoleIdentifier) (*domain.Role, error) {
	role, err := resolveRole(ctx, s.store.Roles(), ident, s.log)
	if err != nil {
		return nil, err
	}
	if !u.HasRole(role.Name) {
		s.log.Error("role not assigned",
			zap.String("role", role.Name), zap.String("username", u.Username))
		return nil, fmt.Errorf("role %q: %w", role.Name, domain.ErrRoleNotAssigned)
	}
	if err := s.store.Users().RemoveRole(ctx, u, role); err != nil {
		s.log.Error("detach role failed", zap.String("role", role.Name), zap.Error(err))
		return nil, persistErr("detach role", err)
	}
	s.log.Info("role removed", zap.String("role", role.Name), zap.String("username", u.Username))
	return role, nil
}

// HasRole 纯谓词，无副作用
func (s *UserService) HasRole(u *domain.User, roleName string) bool {
	return u.HasRole(roleName)
}

func (s *UserService) Delete(ctx context.Context, u *domain.User) error {
	if err := s.store.Users().Delete(ctx, u); err != nil {
		s.log.Error("delete user failed", zap.String("username", u.Username), zap.Error(err))
		return persistErr("delete user", err)
	}
	s.log.Info("user deleted", zap.String("username", u.Username))
	return nil
}
