package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("hunter2!")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2!", h)
	assert.True(t, CheckPassword("hunter2!", h))
	assert.False(t, CheckPassword("hunter3!", h))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same-input")
	require.NoError(t, err)
	h2, err := HashPassword("same-input")
	require.NoError(t, err)

	// 盐不同所以摘要不同，但都能校验通过
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("same-input", h1))
	assert.True(t, CheckPassword("same-input", h2))
}
