package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-account-backend/internal/domain"
)

// RoleService 角色注册表：按 ID/名称解析，增删改查 + 删除时的用户改派
type RoleService struct {
	store domain.Store
	log   *zap.Logger
}

func NewRoleService(store domain.Store, log *zap.Logger) *RoleService {
	return &RoleService{store: store, log: log}
}

func (s *RoleService) Resolve(ctx context.Context, ident domain.RoleIdentifier) (*domain.Role, error) {
	return resolveRole(ctx, s.store.Roles(), ident, s.log)
}

// Read 与 Resolve 同义，保留作对外读取入口
func (s *RoleService) Read(ctx context.Context, ident domain.RoleIdentifier) (*domain.Role, error) {
	return s.Resolve(ctx, ident)
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.store.Roles().List(ctx)
	if err != nil {
		return nil, persistErr("list roles", err)
	}
	return roles, nil
}

// Create 幂等：同名角色已存在时返回现有记录，created=false，不报错
func (s *RoleService) Create(ctx context.Context, name, description string) (*domain.Role, bool, error) {
	existing, err := s.store.Roles().FindByName(ctx, name)
	if err != nil {
		return nil, false, persistErr("find role", err)
	}
	if existing != nil {
		s.log.Info("role already exists, returning existing", zap.String("name", name))
		return existing, false, nil
	}

	role := &domain.Role{Name: name, Description: description}
	if err := s.store.Roles().Create(ctx, role); err != nil {
		// 预检查后仍可能输掉并发写，唯一索引兜底再查一次
		if isDupKey(err) {
			if again, e := s.store.Roles().FindByName(ctx, name); e == nil && again != nil {
				return again, false, nil
			}
		}
		s.log.Error("create role failed", zap.String("name", name), zap.Error(err))
		return nil, false, persistErr("create role", err)
	}
	s.log.Info("role created", zap.Uint("id", role.ID), zap.String("name", name))
	return role, true, nil
}

// Update newName/newDescription 为 nil 表示不改；名称冲突在写之前拦下
func (s *RoleService) Update(ctx context.Context, ident domain.RoleIdentifier, newName, newDescription *string) (*domain.Role, error) {
	role, err := s.Resolve(ctx, ident)
	if err != nil {
		return nil, err
	}
	if newName != nil && *newName != role.Name {
		other, err := s.store.Roles().FindByName(ctx, *newName)
		if err != nil {
			return nil, persistErr("find role", err)
		}
		if other != nil {
			s.log.Warn("role name already in use", zap.String("name", *newName))
			return nil, fmt.Errorf("role %q: %w", *newName, domain.ErrDuplicateRole)
		}
		role.Name = *newName
	}
	if newDescription != nil {
		role.Description = *newDescription
	}
	if err := s.store.Roles().Update(ctx, role); err != nil {
		s.log.Error("update role failed", zap.Uint("id", role.ID), zap.Error(err))
		return nil, persistErr("update role", err)
	}
	s.log.Info("role updated", zap.Uint("id", role.ID), zap.String("name", role.Name))
	return role, nil
}

// Delete 先把持有者逐个解绑（给了 replacement 就换绑），再删角色行，整体一个事务
func (s *RoleService) Delete(ctx context.Context, ident, replacement domain.RoleIdentifier) (*domain.Role, error) {
	var deleted *domain.Role
	err := s.store.Transaction(ctx, func(tx domain.Store) error {
		role, err := resolveRole(ctx, tx.Roles(), ident, s.log)
		if err != nil {
			return err
		}
		var repl *domain.Role
		if !replacement.IsZero() {
			repl, err = resolveRole(ctx, tx.Roles(), replacement, s.log)
			if err != nil {
				return err
			}
			if repl.ID == role.ID {
				repl = nil
			}
		}

		holders, err := tx.Users().UsersWithRole(ctx, role.ID)
		if err != nil {
			return persistErr("list role holders", err)
		}
		for i := range holders {
			u := &holders[i]
			if err := tx.Users().RemoveRole(ctx, u, role); err != nil {
				return persistErr("detach role", err)
			}
			if repl != nil && !u.HasRole(repl.Name) {
				if err := tx.Users().AddRole(ctx, u, repl); err != nil {
					return persistErr("attach replacement role", err)
				}
			}
		}
		if err := tx.Roles().Delete(ctx, role); err != nil {
			return persistErr("delete role", err)
		}
		deleted = role
		if repl != nil {
			s.log.Info("role deleted, holders reassigned",
				zap.String("role", role.Name), zap.String("replacement", repl.Name), zap.Int("holders", len(holders)))
		} else {
			s.log.Info("role deleted, removed from holders",
				zap.String("role", role.Name), zap.Int("holders", len(holders)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
