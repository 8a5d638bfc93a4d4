package user

import "time"

// Role 用户角色。注册时确定，之后没有任何变更角色的操作。
type Role string

const (
	RoleEmployee Role = "employee" // 普通员工：提交/查看自己的申请单
	RoleAdmin    Role = "admin"    // 管理员：审批、车辆管理、看板
)

// ValidRole 判断角色取值是否合法。
func ValidRole(r Role) bool {
	return r == RoleEmployee || r == RoleAdmin
}

// User 是 users 表的 GORM 模型。
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	PasswordSalt string    `gorm:"size:64;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
