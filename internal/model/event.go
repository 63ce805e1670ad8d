package model

import "time"

// Event 日历事件表 — 对应 events
// (ExternalID, StudentID) 唯一：同一外部事件可能出现在多个学生的日历中
type Event struct {
	EventID         string    `gorm:"type:varchar(36);primaryKey"                           json:"event_id"`
	ExternalID      *string   `gorm:"type:varchar(255);uniqueIndex:uq_events_external_student" json:"-"`
	Subject         string    `gorm:"type:varchar(500);not null"                            json:"subject"`
	StartDateTime   time.Time `gorm:"not null;index"                                        json:"start_date_time"`
	EndDateTime     time.Time `gorm:"not null"                                              json:"end_date_time"`
	Location        *string   `gorm:"type:varchar(500)"                                     json:"location,omitempty"`
	Body            *string   `gorm:"type:text"                                             json:"-"`
	IsOnlineMeeting bool      `gorm:"not null;default:false"                                json:"is_online_meeting"`
	StudentID       string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_events_external_student" json:"student_id"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Event) TableName() string { return "events" }
