package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-account-backend/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Preload("Roles").First(&u, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := tx.Preload("Roles").Offset(offset).Limit(limit).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	// Save 不动关联表，角色增删走 AddRole/RemoveRole
	return r.db.WithContext(ctx).Omit("Roles").Save(u).Error
}

func (r *UserRepo) Delete(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Model(u).Association("Roles").Clear(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(u).Error
}

func (r *UserRepo) UsersWithRole(ctx context.Context, roleID uint) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ur ON ur.user_id = users.id").
		Where("ur.role_id = ?", roleID).
		Preload("Roles").
		Find(&users).Error
	return users, err
}

func (r *UserRepo) AddRole(ctx context.Context, u *domain.User, role *domain.Role) error {
	if err := r.db.WithContext(ctx).Model(u).Omit("Roles.*").Association("Roles").Append(role); err != nil {
		return err
	}
	if !u.HasRole(role.Name) {
		u.Roles = append(u.Roles, *role)
	}
	return nil
}

func (r *UserRepo) RemoveRole(ctx context.Context, u *domain.User, role *domain.Role) error {
	if err := r.db.WithContext(ctx).Model(u).Association("Roles").Delete(role); err != nil {
		return err
	}
	kept := u.Roles[:0]
	for _, existing := range u.Roles {
		if existing.ID != role.ID {
			kept = append(kept, existing)
		}
	}
	u.Roles = kept
	return nil
}
