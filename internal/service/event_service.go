package service

import (
	"context"

	"go.uber.org/zap"

	"student-events/internal/dto"
	"student-events/internal/model"
	"student-events/internal/repository"
)

// EventService 事件查询业务接口
type EventService interface {
	List(ctx context.Context, req *dto.EventListRequest) (*dto.PageResult[dto.EventResponse], error)
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEventService 创建 EventService 实例
func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

// List 分页查询事件
// 调用方需先执行 req.ParseDates()
func (s *eventService) List(ctx context.Context, req *dto.EventListRequest) (*dto.PageResult[dto.EventResponse], error) {
	filter := repository.EventFilter{
		StudentID: req.StudentID,
		StartFrom: req.StartDate,
		EndUntil:  req.EndDate,
		Search:    req.Search,
	}

	events, total, err := s.repo.Event.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询事件列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, toEventResponse(&events[i]))
	}
	return dto.NewPageResult(items, total, req.GetPage(), req.GetPageSize()), nil
}

func toEventResponse(e *model.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:              e.EventID,
		Subject:         e.Subject,
		StartDateTime:   e.StartDateTime,
		EndDateTime:     e.EndDateTime,
		Location:        e.Location,
		IsOnlineMeeting: e.IsOnlineMeeting,
	}
}
