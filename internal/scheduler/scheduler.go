package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"student-events/config"
	"student-events/internal/service"
	pkgerrors "student-events/pkg/errors"
)

// Scheduler 定时与手动触发的同步任务调度
// 所有后台任务派生自同一个 base context，Stop 时统一取消
type Scheduler struct {
	cron    *cron.Cron
	syncSvc service.SyncService
	cfg     config.SyncConfig
	logger  *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New 创建调度器；sync.enabled=false 时不注册定时任务，仅支持手动触发
func New(cfg *config.SyncConfig, syncSvc service.SyncService, logger *zap.Logger) (*Scheduler, error) {
	logger = logger.Named("scheduler")
	cronLog := cronLogger{l: logger.Sugar()}

	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog))),
		syncSvc: syncSvc,
		cfg:     *cfg,
		logger:  logger,
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())

	if cfg.Enabled {
		if _, err := s.cron.AddFunc(cfg.Cron, s.runScheduled); err != nil {
			s.cancel()
			return nil, err
		}
	}
	return s, nil
}

// Start 启动定时任务（非阻塞）
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("同步调度已启动",
		zap.Bool("enabled", s.cfg.Enabled),
		zap.String("cron", s.cfg.Cron),
	)
}

// Stop 取消进行中的任务并等待其退出，最长等待到 ctx 截止
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("同步调度已停止")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerStudents 后台执行一次学生同步
func (s *Scheduler) TriggerStudents() {
	s.goRun("students", func(ctx context.Context) error {
		_, err := s.syncSvc.SyncStudents(ctx)
		return err
	})
}

// TriggerEvents 后台执行一次事件同步
func (s *Scheduler) TriggerEvents() {
	s.goRun("events", func(ctx context.Context) error {
		_, err := s.syncSvc.SyncEvents(ctx)
		return err
	})
}

func (s *Scheduler) runScheduled() {
	s.wg.Add(1)
	defer s.wg.Done()
	s.run("all", s.syncSvc.SyncAll)
}

func (s *Scheduler) goRun(kind string, fn func(ctx context.Context) error) {
	if s.baseCtx.Err() != nil {
		s.logger.Warn("调度器已停止，忽略触发", zap.String("kind", kind))
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(kind, fn)
	}()
}

func (s *Scheduler) run(kind string, fn func(ctx context.Context) error) {
	if s.baseCtx.Err() != nil {
		return
	}

	ctx := s.baseCtx
	var cancel context.CancelFunc = func() {}
	if s.cfg.RunTimeout > 0 {
		ctx, cancel = context.WithTimeout(s.baseCtx, s.cfg.RunTimeout)
	}
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	switch {
	case err == nil:
		s.logger.Info("同步任务完成", zap.String("kind", kind), zap.Duration("elapsed", time.Since(start)))
	case errors.Is(err, pkgerrors.ErrSyncInProgress):
		s.logger.Info("同步任务已在执行，本次跳过", zap.String("kind", kind))
	default:
		s.logger.Error("同步任务失败", zap.String("kind", kind), zap.Error(err))
	}
}

// cronLogger 将 cron 内部日志接入 zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
