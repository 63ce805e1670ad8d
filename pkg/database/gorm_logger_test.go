package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(appLevel string) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), appLevel), logs
}

func TestNewGormLogger_LevelMapping(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"debug": gormlogger.Info,
		"info":  gormlogger.Warn,
		"warn":  gormlogger.Warn,
		"error": gormlogger.Error,
	}
	for appLevel, want := range cases {
		l, _ := newObservedGormLogger(appLevel)
		if l.level != want {
			t.Errorf("appLevel=%s 期望 %v，实际 %v", appLevel, want, l.level)
		}
	}
}

func TestGormLogger_Trace_Error(t *testing.T) {
	l, logs := newObservedGormLogger("error")
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, errors.New("boom"))

	if logs.Len() != 1 {
		t.Fatalf("期望 1 条日志，实际 %d", logs.Len())
	}
	if logs.All()[0].Message != "SQL 执行失败" {
		t.Errorf("日志消息不符: %s", logs.All()[0].Message)
	}
}

func TestGormLogger_Trace_RecordNotFoundIgnored(t *testing.T) {
	l, logs := newObservedGormLogger("error")
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, gorm.ErrRecordNotFound)

	if logs.Len() != 0 {
		t.Errorf("ErrRecordNotFound 不应记录，实际 %d 条", logs.Len())
	}
}

func TestGormLogger_Trace_SilentMode(t *testing.T) {
	l, logs := newObservedGormLogger("debug")
	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, errors.New("boom"))

	if logs.Len() != 0 {
		t.Errorf("Silent 模式不应输出日志，实际 %d 条", logs.Len())
	}
}
