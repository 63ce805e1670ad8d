package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"student-events/internal/service"
	"student-events/pkg/response"
)

// DevHandler 开发辅助接口（受 feature.dev_endpoints 控制）
type DevHandler struct {
	seedSvc service.SeedService
}

// NewDevHandler 创建 DevHandler
func NewDevHandler(seedSvc service.SeedService) *DevHandler {
	return &DevHandler{seedSvc: seedSvc}
}

// SeedSample 写入示例数据
// POST /api/v1/dev/seed-sample
func (h *DevHandler) SeedSample(c *gin.Context) {
	result, err := h.seedSvc.SeedSample(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrSampleAlreadySeeded) {
			response.Conflict(c, 15001, "已存在学生数据")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}
