package repo

import (
	"context"

	"gorm.io/gorm"

	"go-account-backend/internal/domain"
)

// GormStore 持有 *gorm.DB；Transaction 内用 tx 重新包一层，事务里外接口一致
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Roles() domain.RoleRepository { return &RoleRepo{db: s.db} }
func (s *GormStore) Users() domain.UserRepository { return &UserRepo{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
