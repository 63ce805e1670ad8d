package handler

import (
	"github.com/gin-gonic/gin"

	"student-events/internal/dto"
	"student-events/internal/service"
	"student-events/pkg/response"
)

// EventHandler 事件模块 HTTP 处理器
type EventHandler struct {
	eventSvc service.EventService
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// ListEvents 事件分页列表
// GET /api/v1/events?page=1&pageSize=20&studentId=&startDate=&endDate=&search=
func (h *EventHandler) ListEvents(c *gin.Context) {
	var req dto.EventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if err := req.ParseDates(); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}

	result, err := h.eventSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
