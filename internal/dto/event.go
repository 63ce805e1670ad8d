package dto

import (
	"errors"
	"strings"
	"time"
)

// ── 事件模块 DTO ──

// ErrInvalidDateFilter 日期参数格式错误
var ErrInvalidDateFilter = errors.New("日期格式无效，应为 RFC3339 或 YYYY-MM-DD")

// queryDateLayouts 查询参数支持的日期格式
var queryDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// EventListRequest 事件列表查询参数
//   - startDate: 仅返回 startDateTime >= startDate 的事件
//   - endDate:   仅返回 endDateTime <= endDate 的事件
//
// 两者分别约束不同字段，不是区间重叠判断
type EventListRequest struct {
	PaginationRequest
	StudentID    string `form:"studentId"`
	StartDateRaw string `form:"startDate"`
	EndDateRaw   string `form:"endDate"`
	Search       string `form:"search"`

	StartDate *time.Time `form:"-"`
	EndDate   *time.Time `form:"-"`
}

// ParseDates 解析 StartDateRaw/EndDateRaw 到 StartDate/EndDate
func (r *EventListRequest) ParseDates() error {
	var err error
	if r.StartDate, err = ParseQueryTime(r.StartDateRaw); err != nil {
		return err
	}
	if r.EndDate, err = ParseQueryTime(r.EndDateRaw); err != nil {
		return err
	}
	return nil
}

// ParseQueryTime 解析查询参数中的时间；空串返回 nil
// 无时区信息的值按 UTC 处理
func ParseQueryTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range queryDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidDateFilter
}

// EventResponse 事件信息（对外字段；externalId 与 body 不暴露）
type EventResponse struct {
	ID              string    `json:"id"`
	Subject         string    `json:"subject"`
	StartDateTime   time.Time `json:"startDateTime"`
	EndDateTime     time.Time `json:"endDateTime"`
	Location        *string   `json:"location"`
	IsOnlineMeeting bool      `json:"isOnlineMeeting"`
}
