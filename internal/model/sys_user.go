package model

import "time"

// 用户角色
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperator UserRole = "operator"
	UserRoleViewer   UserRole = "viewer"
)

// 用户状态
const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// SysUser 后台操作员账号
type SysUser struct {
	BaseModel
	Username string   `gorm:"size:50;uniqueIndex;not null"`
	Password string   `gorm:"size:255;not null"` // bcrypt 哈希
	Email    string   `gorm:"size:100;index"`
	Role     UserRole `gorm:"size:20;default:'operator'"`
	Status   int      `gorm:"default:1;comment:状态 0-停用 1-正常"`

	LastLoginAt *time.Time
}

func (SysUser) TableName() string {
	return "sys_users"
}
