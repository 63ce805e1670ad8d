package errors

import "errors"

// ErrSyncInProgress 同一类同步任务正在执行（锁被占用）
var ErrSyncInProgress = errors.New("同步任务正在执行中，请稍后再试")

// ErrLockLost 释放锁时发现锁已过期或被其他实例持有
var ErrLockLost = errors.New("同步锁已失效")
