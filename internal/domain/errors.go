package domain

import "errors"

// 业务错误统一在 domain 定义，transport 层按 errors.Is 映射响应码
var (
	ErrRoleNotFound        = errors.New("role not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateRole       = errors.New("role name already in use")
	ErrDuplicateUser       = errors.New("username or email already in use")
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
	ErrRoleNotAssigned     = errors.New("role not assigned")
	ErrPersistence         = errors.New("persistence failure")
)
