package repo

import (
	"context"
	"sync"

	"go-account-backend/internal/domain"
)

// InmemStore 纯内存实现，事务用 copy-on-write：fn 在克隆上执行，成功才替换
// 单元测试与本地 demo 用，语义与 GormStore 对齐
type InmemStore struct {
	mu   sync.Mutex
	data *inmemData
	inTx bool
}

type inmemData struct {
	nextRoleID uint
	nextUserID uint
	roles      map[uint]*domain.Role
	users      map[uint]*domain.User
}

func NewInmemStore() *InmemStore {
	return &InmemStore{data: &inmemData{
		nextRoleID: 1,
		nextUserID: 1,
		roles:      map[uint]*domain.Role{},
		users:      map[uint]*domain.User{},
	}}
}

func (s *InmemStore) Roles() domain.RoleRepository { return &inmemRoleRepo{s} }
func (s *InmemStore) Users() domain.UserRepository { return &inmemUserRepo{s} }

func (s *InmemStore) Transaction(_ context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := &InmemStore{data: s.data.clone(), inTx: true}
	if err := fn(staged); err != nil {
		return err
	}
	s.data = staged.data
	return nil
}

func (s *InmemStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (d *inmemData) clone() *inmemData {
	out := &inmemData{
		nextRoleID: d.nextRoleID,
		nextUserID: d.nextUserID,
		roles:      make(map[uint]*domain.Role, len(d.roles)),
		users:      make(map[uint]*domain.User, len(d.users)),
	}
	for id, r := range d.roles {
		out.roles[id] = cloneRole(r)
	}
	for id, u := range d.users {
		out.users[id] = cloneUser(u)
	}
	return out
}

func cloneRole(r *domain.Role) *domain.Role {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Roles = append([]domain.Role(nil), u.Roles...)
	return &cp
}

type inmemRoleRepo struct{ s *InmemStore }

func (r *inmemRoleRepo) FindByID(_ context.Context, id uint) (*domain.Role, error) {
	defer r.s.lock()()
	return cloneRole(r.s.data.roles[id]), nil
}

func (r *inmemRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	defer r.s.lock()()
	for _, role := range r.s.data.roles {
		if role.Name == name {
			return cloneRole(role), nil
		}
	}
	return nil, nil
}

func (r *inmemRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	defer r.s.lock()()
	var out []domain.Role
	for id := uint(1); id < r.s.data.nextRoleID; id++ {
		if role, ok := r.s.data.roles[id]; ok {
			out = append(out, *cloneRole(role))
		}
	}
	return out, nil
}

func (r *inmemRoleRepo) Create(_ context.Context, role *domain.Role) error {
	defer r.s.lock()()
	role.ID = r.s.data.nextRoleID
	r.s.data.nextRoleID++
	r.s.data.roles[role.ID] = cloneRole(role)
	return nil
}

func (r *inmemRoleRepo) Update(_ context.Context, role *domain.Role) error {
	defer r.s.lock()()
	r.s.data.roles[role.ID] = cloneRole(role)
	// 角色内嵌在用户的角色集里，重命名要同步
	for _, u := range r.s.data.users {
		for i := range u.Roles {
			if u.Roles[i].ID == role.ID {
				u.Roles[i] = *role
			}
		}
	}
	return nil
}

func (r *inmemRoleRepo) Delete(_ context.Context, role *domain.Role) error {
	defer r.s.lock()()
	delete(r.s.data.roles, role.ID)
	return nil
}

type inmemUserRepo struct{ s *InmemStore }

func (r *inmemUserRepo) Create(_ context.Context, u *domain.User) error {
	defer r.s.lock()()
	u.ID = r.s.data.nextUserID
	r.s.data.nextUserID++
	r.s.data.users[u.ID] = cloneUser(u)
	return nil
}

func (r *inmemUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	defer r.s.lock()()
	return cloneUser(r.s.data.users[id]), nil
}

func (r *inmemUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *inmemUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *inmemUserRepo) List(_ context.Context, offset, limit int) ([]domain.User, int64, error) {
	defer r.s.lock()()
	all := make([]domain.User, 0, len(r.s.data.users))
	for id := uint(1); id < r.s.data.nextUserID; id++ {
		if u, ok := r.s.data.users[id]; ok {
			all = append(all, *cloneUser(u))
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *inmemUserRepo) Update(_ context.Context, u *domain.User) error {
	defer r.s.lock()()
	stored, ok := r.s.data.users[u.ID]
	if !ok {
		r.s.data.users[u.ID] = cloneUser(u)
		return nil
	}
	// 与 GORM 版一致：Update 不动角色集
	roles := stored.Roles
	cp := cloneUser(u)
	cp.Roles = roles
	r.s.data.users[u.ID] = cp
	return nil
}

func (r *inmemUserRepo) Delete(_ context.Context, u *domain.User) error {
	defer r.s.lock()()
	delete(r.s.data.users, u.ID)
	return nil
}

func (r *inmemUserRepo) UsersWithRole(_ context.Context, roleID uint) ([]domain.User, error) {
	defer r.s.lock()()
	var out []domain.User
	for id := uint(1); id < r.s.data.nextUserID; id++ {
		u, ok := r.s.data.users[id]
		if !ok {
			continue
		}
		for _, role := range u.Roles {
			if role.ID == roleID {
				out = append(out, *cloneUser(u))
				break
			}
		}
	}
	return out, nil
}

func (r *inmemUserRepo) AddRole(_ context.Context, u *domain.User, role *domain.Role) error {
	defer r.s.lock()()
	if stored, ok := r.s.data.users[u.ID]; ok {
		stored.Roles = append(stored.Roles, *role)
	}
	if !u.HasRole(role.Name) {
		u.Roles = append(u.Roles, *role)
	}
	return nil
}

func (r *inmemUserRepo) RemoveRole(_ context.Context, u *domain.User, role *domain.Role) error {
	defer r.s.lock()()
	if stored, ok := r.s.data.users[u.ID]; ok {
		stored.Roles = dropRole(stored.Roles, role.ID)
	}
	u.Roles = dropRole(u.Roles, role.ID)
	return nil
}

func dropRole(roles []domain.Role, id uint) []domain.Role {
	kept := roles[:0]
	for _, r := range roles {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return kept
}
