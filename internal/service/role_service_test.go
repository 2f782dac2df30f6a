package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-account-backend/internal/domain"
	"go-account-backend/internal/repo"
)

func newTestServices(t *testing.T) (*RoleService, *UserService, domain.Store) {
	t.Helper()
	store := repo.NewInmemStore()
	log := zap.NewNop()
	return NewRoleService(store, log), NewUserService(store, log), store
}

func TestCreateRoleIdempotent(t *testing.T) {
	roles, _, store := newTestServices(t)
	ctx := context.Background()

	first, created, err := roles.Create(ctx, "admin", "full access")
	require.NoError(t, err)
	assert.True(t, created)
	require.NotZero(t, first.ID)

	second, created, err := roles.Create(ctx, "admin", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "full access", second.Description)

	all, err := store.Roles().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResolveRoleByIDAndName(t *testing.T) {
	roles, _, _ := newTestServices(t)
	ctx := context.Background()

	created, _, err := roles.Create(ctx, "editor", "")
	require.NoError(t, err)

	byID, err := roles.Resolve(ctx, domain.RoleByID(created.ID))
	require.NoError(t, err)
	assert.Equal(t, "editor", byID.Name)

	byName, err := roles.Resolve(ctx, domain.RoleByName("editor"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = roles.Resolve(ctx, domain.RoleByName("missing"))
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	_, err = roles.Read(ctx, domain.RoleByID(999))
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestUpdateRole(t *testing.T) {
	roles, _, _ := newTestServices(t)
	ctx := context.Background()

	_, _, err := roles.Create(ctx, "viewer", "")
	require.NoError(t, err)
	target, _, err := roles.Create(ctx, "editor", "can edit")
	require.NoError(t, err)

	// 改成已有名称要在写之前被拦下
	name := "viewer"
	_, err = roles.Update(ctx, domain.RoleByID(target.ID), &name, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateRole)

	unchanged, err := roles.Read(ctx, domain.RoleByID(target.ID))
	require.NoError(t, err)
	assert.Equal(t, "editor", unchanged.Name)

	newName := "publisher"
	newDesc := "can publish"
	updated, err := roles.Update(ctx, domain.RoleByName("editor"), &newName, &newDesc)
	require.NoError(t, err)
	assert.Equal(t, "publisher", updated.Name)
	assert.Equal(t, "can publish", updated.Description)

	_, err = roles.Update(ctx, domain.RoleByName("ghost"), &newName, nil)
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestDeleteRoleWithReplacement(t *testing.T) {
	roles, users, _ := newTestServices(t)
	ctx := context.Background()

	old, _, err := roles.Create(ctx, "legacy", "")
	require.NoError(t, err)
	repl, _, err := roles.Create(ctx, "modern", "")
	require.NoError(t, err)

	u1, err := users.Create(ctx, "alice", "alice@example.com", "secret-pass", []domain.RoleIdentifier{domain.RoleByID(old.ID)})
	require.NoError(t, err)
	u2, err := users.Create(ctx, "bob", "bob@example.com", "secret-pass", []domain.RoleIdentifier{domain.RoleByName("legacy")})
	require.NoError(t, err)

	deleted, err := roles.Delete(ctx, domain.RoleByName("legacy"), domain.RoleByID(repl.ID))
	require.NoError(t, err)
	assert.Equal(t, old.ID, deleted.ID)

	for _, id := range []uint{u1.ID, u2.ID} {
		u, err := users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, u.HasRole("legacy"))
		assert.True(t, u.HasRole("modern"))
	}

	_, err = roles.Resolve(ctx, domain.RoleByID(old.ID))
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestDeleteRoleWithoutReplacement(t *testing.T) {
	roles, users, _ := newTestServices(t)
	ctx := context.Background()

	old, _, err := roles.Create(ctx, "legacy", "")
	require.NoError(t, err)
	u, err := users.Create(ctx, "carol", "carol@example.com", "secret-pass", []domain.RoleIdentifier{domain.RoleByID(old.ID)})
	require.NoError(t, err)

	_, err = roles.Delete(ctx, domain.RoleByID(old.ID), domain.RoleIdentifier{})
	require.NoError(t, err)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Roles)
}

func TestDeleteRoleBadReplacementRollsBack(t *testing.T) {
	roles, users, _ := newTestServices(t)
	ctx := context.Background()

	old, _, err := roles.Create(ctx, "legacy", "")
	require.NoError(t, err)
	u, err := users.Create(ctx, "dave", "dave@example.com", "secret-pass", []domain.RoleIdentifier{domain.RoleByID(old.ID)})
	require.NoError(t, err)

	_, err = roles.Delete(ctx, domain.RoleByID(old.ID), domain.RoleByName("missing"))
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	// 整个事务回滚：角色还在，用户的角色集没动
	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.HasRole("legacy"))
	_, err = roles.Resolve(ctx, domain.RoleByID(old.ID))
	assert.NoError(t, err)
}
