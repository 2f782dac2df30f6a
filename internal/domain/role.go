package domain

import (
	"encoding/json"
	"strconv"
)

type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:80;not null" json:"name"`
	Description string `gorm:"size:255" json:"description,omitempty"`
}

func (Role) TableName() string { return "roles" }

// RoleIdentifier 既可按 ID 也可按名称定位角色
// JSON 数字 → ID，JSON 字符串 → 名称；路径参数里的纯数字先按 ID 再按名称兜底
type RoleIdentifier struct {
	ID   uint
	Name string
}

func RoleByID(id uint) RoleIdentifier      { return RoleIdentifier{ID: id} }
func RoleByName(name string) RoleIdentifier { return RoleIdentifier{Name: name} }

func ParseRoleIdentifier(s string) RoleIdentifier {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return RoleIdentifier{ID: uint(n), Name: s}
	}
	return RoleIdentifier{Name: s}
}

func (r RoleIdentifier) IsZero() bool { return r.ID == 0 && r.Name == "" }

func (r RoleIdentifier) String() string {
	if r.Name != "" {
		return r.Name
	}
	return strconv.FormatUint(uint64(r.ID), 10)
}

func (r *RoleIdentifier) UnmarshalJSON(b []byte) error {
	var id uint
	if err := json.Unmarshal(b, &id); err == nil {
		r.ID = id
		return nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	*r = ParseRoleIdentifier(name)
	return nil
}
