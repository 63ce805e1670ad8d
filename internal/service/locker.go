package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	pkgerrors "student-events/pkg/errors"
	"student-events/pkg/redis"
)

// SyncLocker 同步任务互斥锁
// ok=false 表示锁已被其他执行者持有
type SyncLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// ── Redis 实现（多实例部署） ──

type redisLocker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLocker 基于 Redis 租约锁创建 SyncLocker
func NewRedisLocker(client *redis.Client, logger *zap.Logger) SyncLocker {
	return &redisLocker{client: client, logger: logger}
}

func (l *redisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	release, ok, err := l.client.AcquireLock(ctx, name, ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	return func() {
		if err := release(); err != nil {
			if errors.Is(err, pkgerrors.ErrLockLost) {
				l.logger.Warn("同步锁在任务结束前已过期", zap.String("lock", name))
				return
			}
			l.logger.Error("释放同步锁失败", zap.String("lock", name), zap.Error(err))
		}
	}, true, nil
}

// ── 进程内实现（单实例 / 无 Redis） ──

type localLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker 创建进程内 SyncLocker，ttl 不生效
func NewLocalLocker() SyncLocker {
	return &localLocker{held: make(map[string]bool)}
}

func (l *localLocker) TryLock(_ context.Context, name string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, true, nil
}
