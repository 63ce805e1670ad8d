package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ── 查询条件 ──

// StudentFilter 学生列表过滤条件（空字符串表示不过滤）
type StudentFilter struct {
	Search     string // 匹配 display_name 或 email
	Department string
}

// EventFilter 事件列表过滤条件
// StartFrom 约束 start_date_time，EndUntil 约束 end_date_time，互相独立
type EventFilter struct {
	StudentID string
	StartFrom *time.Time
	EndUntil  *time.Time
	Search    string // 匹配 subject 或 location
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 将用户输入转为 ILIKE 子串模式，通配符按字面量处理
// PostgreSQL LIKE 默认转义符为反斜杠
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func studentFilterScope(f StudentFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s := strings.TrimSpace(f.Search); s != "" {
			p := containsPattern(s)
			db = db.Where("(display_name ILIKE ? OR email ILIKE ?)", p, p)
		}
		if d := strings.TrimSpace(f.Department); d != "" {
			// NULL ILIKE 结果为 NULL，空部门自然不会命中
			db = db.Where("department ILIKE ?", containsPattern(d))
		}
		return db
	}
}

func eventFilterScope(f EventFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.StudentID != "" {
			db = db.Where("student_id = ?", f.StudentID)
		}
		if f.StartFrom != nil {
			db = db.Where("start_date_time >= ?", *f.StartFrom)
		}
		if f.EndUntil != nil {
			db = db.Where("end_date_time <= ?", *f.EndUntil)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			p := containsPattern(s)
			db = db.Where("(subject ILIKE ? OR location ILIKE ?)", p, p)
		}
		return db
	}
}

// 排序：主键作为次级排序保证结果确定
const (
	studentOrder = "display_name ASC, student_id ASC"
	eventOrder   = "start_date_time ASC, event_id ASC"
)
