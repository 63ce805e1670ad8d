package dto

import "time"

// ── 学生模块 DTO ──

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
	Search     string `form:"search"`
	Department string `form:"department"`
}

// StudentResponse 学生信息（对外字段；externalId 不暴露）
type StudentResponse struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email"`
	Department   *string   `json:"department"`
	LastSyncDate time.Time `json:"lastSyncDate"`
}

// StudentEventsResponse 学生及其全部事件
type StudentEventsResponse struct {
	Student StudentResponse `json:"student"`
	Events  []EventResponse `json:"events"`
}
