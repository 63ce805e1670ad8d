package model

import "time"

// Student 学生表 — 对应 students
// ExternalID 为目录服务中的用户 ID，同步时作为自然键匹配
type Student struct {
	StudentID    string    `gorm:"type:varchar(36);primaryKey"      json:"student_id"`
	ExternalID   *string   `gorm:"type:varchar(255);uniqueIndex"    json:"-"`
	DisplayName  string    `gorm:"type:varchar(200);not null;index" json:"display_name"`
	Email        string    `gorm:"type:varchar(200);not null;unique" json:"email"`
	Department   *string   `gorm:"type:varchar(200)"                json:"department,omitempty"`
	LastSyncDate time.Time `gorm:"not null"                         json:"last_sync_date"`
	BaseModel

	// 关联（删除学生级联删除其事件）
	Events []Event `gorm:"foreignKey:StudentID;references:StudentID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
