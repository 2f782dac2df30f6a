package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string         `gorm:"size:128;not null" json:"-"`
	Roles        []Role         `gorm:"many2many:user_roles" json:"roles"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// HasRole 纯查询；调用方需保证 Roles 已随用户取出
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// RoleRepository Find* 未命中返回 (nil, nil)，由 service 决定是否算错误
type RoleRepository interface {
	FindByID(ctx context.Context, id uint) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, role *Role) error
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, u *User) error

	// 关联表操作：显式增删查，不依赖隐式加载
	UsersWithRole(ctx context.Context, roleID uint) ([]User, error)
	AddRole(ctx context.Context, u *User, role *Role) error
	RemoveRole(ctx context.Context, u *User, role *Role) error
}

// Store 事务边界：fn 返回 nil 提交，返回 error 整体回滚
type Store interface {
	Roles() RoleRepository
	Users() UserRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}
