package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-account-backend/internal/domain"
)

func TestCreateUserUniqueness(t *testing.T) {
	_, users, _ := newTestServices(t)
	ctx := context.Background()

	_, err := users.Create(ctx, "alice", "alice@example.com", "secret-pass", nil)
	require.NoError(t, err)

	_, err = users.Create(ctx, "alice", "other@example.com", "secret-pass", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	_, err = users.Create(ctx, "someone", "alice@example.com", "secret-pass", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	_, total, err := users.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCreateUserWithRolesAtomic(t *testing.T) {
	roles, users, _ := newTestServices(t)
	ctx := context.Background()

	_, _, err := roles.Create(ctx, "editor", "")
	require.NoError(t, err)

	// 一个角色解析失败，整批丢弃，连用户行都不能留下
	_, err = users.Create(ctx, "erin", "erin@example.com", "secret-pass",
		[]domain.RoleIdentifier{domain.RoleByName("editor"), domain.RoleByName("missing")})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	_, err = users.GetByUsername(ctx, "erin")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, total, err := users.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	u, err := users.Create(ctx, "erin", "erin@example.com", "secret-pass",
		[]domain.RoleIdentifier{domain.RoleByName("editor")})
	require.NoError(t, err)
	assert.True(t, u.HasRole("editor"))
}

func TestPasswordRoundTrip(t *testing.T) {
	_, users, _ := newTestServices(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "frank", "frank@example.com", "first-secret", nil)
	require.NoError(t, err)
	assert.NotEqual(t, "first-secret", u.PasswordHash)
	assert.True(t, users.CheckPassword(u, "first-secret"))
	assert.False(t, users.CheckPassword(u, "other-secret"))

	require.NoError(t, users.SetPassword(ctx, u, "second-secret"))
	assert.True(t, users.CheckPassword(u, "second-secret"))
	assert.False(t, users.CheckPassword(u, "first-secret"))

	// 哈希落库，不是明文
	stored, err := users.GetByUsername(ctx, "frank")
	require.NoError(t, err)
	assert.NotEqual(t, "second-secret", stored.PasswordHash)
	assert.True(t, users.CheckPassword(stored, "second-secret"))
}

func TestRoleAssignmentSymmetry(t *testing.T) {
	roles, users, _ := newTestServices(t)
	ctx := context.Background()

	_, _, err := roles.Create(ctx, "editor", "")
	require.NoError(t, err)
	u, err := users.Create(ctx, "grace", "grace@example.com", "secret-pass", nil)
	require.NoError(t, err)

	_, err = users.AddRole(ctx, u, domain.RoleByName("editor"))
	require.NoError(t, err)
	assert.True(t, users.HasRole(u, "editor"))

	// 重复加要报错
	_, err = users.AddRole(ctx, u, domain.RoleByName("editor"))
	assert.ErrorIs(t, err, domain.ErrRoleAlreadyAssigned)

	_, err = users.RemoveRole(ctx, u, domain.RoleByName("editor"))
	require.NoError(t, err)
	assert.False(t, users.HasRole(u, "editor"))
	assert.Empty(t, u.Roles)

	// 没持有的不能删
	_, err = users.RemoveRole(ctx, u, domain.RoleByName("editor"))
	assert.ErrorIs(t, err, domain.ErrRoleNotAssigned)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Roles)
}

func TestAddRoleUnknownRole(t *testing.T) {
	_, users, _ := newTestServices(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "henry", "henry@example.com", "secret-pass", nil)
	require.NoError(t, err)

	_, err = users.AddRole(ctx, u, domain.RoleByName("ghost"))
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestResolveUser(t *testing.T) {
	_, users, _ := newTestServices(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "ivy", "ivy@example.com", "secret-pass", nil)
	require.NoError(t, err)

	byName, err := users.Resolve(ctx, "ivy")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := users.Resolve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "ivy", byID.Username)

	_, err = users.Resolve(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	_, users, _ := newTestServices(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "judy", "judy@example.com", "secret-pass", nil)
	require.NoError(t, err)
	require.NoError(t, users.Delete(ctx, u))

	_, err = users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
