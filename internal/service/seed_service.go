package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"student-events/config"
	"student-events/internal/model"
	"student-events/internal/repository"
)

var ErrSampleAlreadySeeded = errors.New("已存在学生数据，跳过示例数据写入")

// SeedService 初始化数据
type SeedService interface {
	// EnsureAdmin users 表为空时按配置创建管理员
	EnsureAdmin(ctx context.Context) error
	// SeedSample 无学生时写入示例学生与事件
	SeedSample(ctx context.Context) (*SyncResult, error)
}

type seedService struct {
	cfg    *config.AuthConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewSeedService 创建 SeedService 实例
func NewSeedService(cfg *config.AuthConfig, repo *repository.Repository, logger *zap.Logger) SeedService {
	return &seedService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

func (s *seedService) EnsureAdmin(ctx context.Context) error {
	count, err := s.repo.User.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if s.cfg.BootstrapAdminUsername == "" || s.cfg.BootstrapAdminPassword == "" {
		s.logger.Warn("users 表为空且未配置初始管理员账号，无法登录")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{
		UserID:       uuid.NewString(),
		Username:     s.cfg.BootstrapAdminUsername,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := s.repo.User.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("已创建初始管理员", zap.String("username", admin.Username))
	return nil
}

func (s *seedService) SeedSample(ctx context.Context) (*SyncResult, error) {
	count, err := s.repo.Student.Count(ctx)
	if err != nil {
		s.logger.Error("统计学生失败", zap.Error(err))
		return nil, err
	}
	if count > 0 {
		return nil, ErrSampleAlreadySeeded
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	engineering := "Engineering"
	mathematics := "Mathematics"
	room := "Room 101"

	alice := model.Student{
		StudentID:    uuid.NewString(),
		DisplayName:  "Alice Johnson",
		Email:        "alice.johnson@example.edu",
		Department:   &engineering,
		LastSyncDate: now,
	}
	bob := model.Student{
		StudentID:    uuid.NewString(),
		DisplayName:  "Bob Smith",
		Email:        "bob.smith@example.edu",
		Department:   &mathematics,
		LastSyncDate: now,
	}
	events := []model.Event{
		{
			EventID:         uuid.NewString(),
			Subject:         "Team Meeting",
			StartDateTime:   today.AddDate(0, 0, 1).Add(9 * time.Hour),
			EndDateTime:     today.AddDate(0, 0, 1).Add(10 * time.Hour),
			IsOnlineMeeting: true,
			StudentID:       alice.StudentID,
		},
		{
			EventID:       uuid.NewString(),
			Subject:       "Project Review",
			StartDateTime: today.AddDate(0, 0, 2).Add(14 * time.Hour),
			EndDateTime:   today.AddDate(0, 0, 2).Add(15 * time.Hour),
			Location:      &room,
			StudentID:     bob.StudentID,
		},
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Student.BatchCreate(ctx, []model.Student{alice, bob}); err != nil {
		rollback(tx)
		s.logger.Error("写入示例学生失败", zap.Error(err))
		return nil, err
	}
	if err := txRepo.Event.BatchCreate(ctx, events); err != nil {
		rollback(tx)
		s.logger.Error("写入示例事件失败", zap.Error(err))
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	s.logger.Info("已写入示例数据")
	return &SyncResult{Created: 2 + len(events)}, nil
}
