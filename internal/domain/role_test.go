package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleIdentifier(t *testing.T) {
	byID := ParseRoleIdentifier("42")
	assert.EqualValues(t, 42, byID.ID)
	assert.Equal(t, "42", byID.Name) // 纯数字查 ID 落空后还能按名称兜底

	byName := ParseRoleIdentifier("admin")
	assert.Zero(t, byName.ID)
	assert.Equal(t, "admin", byName.Name)

	assert.True(t, RoleIdentifier{}.IsZero())
	assert.False(t, byName.IsZero())
}

func TestRoleIdentifierUnmarshalJSON(t *testing.T) {
	var in struct {
		Roles []RoleIdentifier `json:"roles"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"roles":[7,"editor"]}`), &in))
	require.Len(t, in.Roles, 2)
	assert.EqualValues(t, 7, in.Roles[0].ID)
	assert.Equal(t, "editor", in.Roles[1].Name)

	assert.Error(t, json.Unmarshal([]byte(`{"roles":[true]}`), &in))
}
