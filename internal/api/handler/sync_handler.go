package handler

import (
	"github.com/gin-gonic/gin"

	"student-events/pkg/response"
)

// SyncTrigger 后台同步触发器（由 scheduler.Scheduler 实现）
type SyncTrigger interface {
	TriggerStudents()
	TriggerEvents()
}

// SyncHandler 同步模块 HTTP 处理器
// 同步在后台执行，接口立即返回 202
type SyncHandler struct {
	trigger SyncTrigger
}

// NewSyncHandler 创建 SyncHandler
func NewSyncHandler(trigger SyncTrigger) *SyncHandler {
	return &SyncHandler{trigger: trigger}
}

// SyncStudents 触发学生同步
// POST /api/v1/sync/students
func (h *SyncHandler) SyncStudents(c *gin.Context) {
	h.trigger.TriggerStudents()
	response.Accepted(c, "学生同步已开始")
}

// SyncEvents 触发事件同步
// POST /api/v1/sync/events
func (h *SyncHandler) SyncEvents(c *gin.Context) {
	h.trigger.TriggerEvents()
	response.Accepted(c, "事件同步已开始")
}
