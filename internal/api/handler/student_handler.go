package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"student-events/internal/dto"
	"student-events/internal/service"
	"student-events/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 学生分页列表
// GET /api/v1/students?page=1&pageSize=20&search=&department=
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetStudentEvents 学生详情及其全部事件
// GET /api/v1/students/:id/events
func (h *StudentHandler) GetStudentEvents(c *gin.Context) {
	result, err := h.studentSvc.GetWithEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, 12001, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
