package dto

import (
	"errors"
	"testing"
	"time"
)

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-03-01T08:30:00", time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-03-01T08:30:00Z", time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-03-01T16:30:00+08:00", time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseQueryTime(c.raw)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", c.raw, err)
		}
		if !got.Equal(c.want) {
			t.Errorf("解析 %q 期望 %v，实际 %v", c.raw, c.want, got)
		}
	}
}

func TestParseQueryTime_EmptyAndInvalid(t *testing.T) {
	got, err := ParseQueryTime("  ")
	if err != nil || got != nil {
		t.Errorf("空串应返回 (nil, nil)，实际 (%v, %v)", got, err)
	}

	if _, err := ParseQueryTime("03/01/2025"); !errors.Is(err, ErrInvalidDateFilter) {
		t.Errorf("期望 ErrInvalidDateFilter，实际: %v", err)
	}
}

func TestEventListRequest_ParseDates(t *testing.T) {
	req := &EventListRequest{StartDateRaw: "2025-01-01", EndDateRaw: "bad"}
	if err := req.ParseDates(); !errors.Is(err, ErrInvalidDateFilter) {
		t.Errorf("endDate 无效时应返回错误，实际: %v", err)
	}

	req = &EventListRequest{StartDateRaw: "2025-01-01"}
	if err := req.ParseDates(); err != nil {
		t.Fatalf("ParseDates 失败: %v", err)
	}
	if req.StartDate == nil || req.EndDate != nil {
		t.Errorf("期望仅 StartDate 有值，实际 start=%v end=%v", req.StartDate, req.EndDate)
	}
}
