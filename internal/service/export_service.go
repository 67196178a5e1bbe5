package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-core/backend/internal/model"
	"campus-core/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSlots     = errors.New("该学期暂无时间表数据")
	ErrExportInvalidType = errors.New("不支持的导出类型")
)

// ExportService 时间表导出业务接口
//
// 设计说明：
//   - Excel 导出面向教务打印：总课表网格，行=时段、列=星期
//   - ICS 导出面向个人日历订阅：学生/教师时间表转为每周重复事件
//   - 均以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportMasterXLSX 导出学期总课表为 Excel
	ExportMasterXLSX(ctx context.Context, semesterID string) (*bytes.Buffer, string, error)
	// ExportICS 导出学生/教师时间表为 iCalendar 订阅文件
	ExportICS(ctx context.Context, viewType, userID, semesterID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── ExportMasterXLSX ──────────────────────
//
// 输出格式：
//   - 单 Sheet "总课表"
//   - 行头：时间段 "HH:MM-HH:MM"（按开始时间排序）
//   - 列头：Monday ~ Saturday
//   - 单元格：每行一条 "课程代码 课程名 [班号] (教室)"

func (s *exportService) ExportMasterXLSX(ctx context.Context, semesterID string) (*bytes.Buffer, string, error) {
	semester, err := resolveSemester(ctx, s.repo, semesterID)
	if err != nil {
		return nil, "", err
	}

	slots, err := s.repo.Slot.List(ctx, repository.SlotFilter{SemesterID: semester.SemesterID})
	if err != nil {
		s.logger.Error("查询学期时段失败", zap.Error(err))
		return nil, "", err
	}
	if len(slots) == 0 {
		return nil, "", ErrExportNoSlots
	}

	// 构建网格索引: "start-end" × day → 单元格行
	type gridKey struct {
		timeRange string
		day       string
	}

	grid := make(map[gridKey][]string)
	timeSeen := make(map[string]bool)
	var timeRanges []string

	for i := range slots {
		slot := &slots[i]
		tr := slot.StartTime + "-" + slot.EndTime
		if !timeSeen[tr] {
			timeSeen[tr] = true
			timeRanges = append(timeRanges, tr)
		}
		grid[gridKey{tr, slot.Day}] = append(grid[gridKey{tr, slot.Day}], cellText(slot))
	}
	sort.Strings(timeRanges)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "总课表"
	f.SetSheetName("Sheet1", sheet)

	// 表头
	f.SetCellValue(sheet, "A1", "时间")
	for i, day := range model.Weekdays {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheet, cell, day)
	}

	// 网格内容
	for r, tr := range timeRanges {
		rowCell, _ := excelize.CoordinatesToCellName(1, r+2)
		f.SetCellValue(sheet, rowCell, tr)
		for c, day := range model.Weekdays {
			entries := grid[gridKey{tr, day}]
			if len(entries) == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+2, r+2)
			f.SetCellValue(sheet, cell, strings.Join(entries, "\n"))
		}
	}

	f.SetColWidth(sheet, "A", "G", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("timetable_%s.xlsx", semester.Session)
	return buf, filename, nil
}

// ────────────────────── ExportICS ──────────────────────
//
// 每个时段生成一个 VEVENT：
//   - DTSTART/DTEND 取学期开始日之后的首个对应星期
//   - RRULE 按周重复至学期结束日
//   - LOCATION 为教室号（未定教室则省略）

func (s *exportService) ExportICS(ctx context.Context, viewType, userID, semesterID string) (*bytes.Buffer, string, error) {
	semester, err := resolveSemester(ctx, s.repo, semesterID)
	if err != nil {
		return nil, "", err
	}

	var sections []model.CourseSection
	switch viewType {
	case "student":
		student, err := s.repo.Student.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", ErrStudentNotFound
			}
			return nil, "", err
		}
		sections, err = s.repo.Section.ListRegisteredByStudent(ctx, student.StudentID, semester.SemesterID)
		if err != nil {
			return nil, "", err
		}
	case "teacher":
		sections, err = s.repo.Section.ListByTeacher(ctx, userID, semester.SemesterID)
		if err != nil {
			return nil, "", err
		}
	default:
		return nil, "", ErrExportInvalidType
	}

	if len(sections) == 0 {
		return nil, "", ErrExportNoSlots
	}

	ids := make([]string, 0, len(sections))
	for i := range sections {
		ids = append(ids, sections[i].SectionID)
	}
	slots, err := s.repo.Slot.List(ctx, repository.SlotFilter{
		SemesterID: semester.SemesterID,
		SectionIDs: ids,
	})
	if err != nil {
		s.logger.Error("查询时段失败", zap.Error(err))
		return nil, "", err
	}
	if len(slots) == 0 {
		return nil, "", ErrExportNoSlots
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//campus-core//timetable//EN")

	now := time.Now()
	until := semester.EndDate.AddDate(0, 0, 1).Format("20060102T000000Z")

	for i := range slots {
		slot := &slots[i]

		startAt, endAt, ok := firstOccurrence(semester.StartDate, slot)
		if !ok {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@campus-core", slot.SlotID))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(startAt)
		event.SetEndAt(endAt)
		event.SetSummary(eventSummary(slot))
		if slot.RoomNo != nil {
			event.SetLocation(*slot.RoomNo)
		}
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s;UNTIL=%s", rruleDayCode(slot.Day), until))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("timetable_%s_%s.ics", viewType, semester.Session)
	return buf, filename, nil
}

// ── 内部辅助方法 ──

func cellText(slot *model.TimetableSlot) string {
	text := "未定课程"
	if slot.Section != nil {
		if slot.Section.Course != nil {
			text = fmt.Sprintf("%s %s [%s]",
				slot.Section.Course.Code, slot.Section.Course.Name, slot.Section.SectionCode)
		} else {
			text = fmt.Sprintf("[%s]", slot.Section.SectionCode)
		}
	}
	if slot.RoomNo != nil {
		text += fmt.Sprintf(" (%s)", *slot.RoomNo)
	}
	return text
}

func eventSummary(slot *model.TimetableSlot) string {
	if slot.Section != nil && slot.Section.Course != nil {
		return fmt.Sprintf("%s %s", slot.Section.Course.Code, slot.Section.Course.Name)
	}
	return "课程"
}

// firstOccurrence 学期开始日之后（含当日）首个对应星期的上下课时间
func firstOccurrence(semesterStart time.Time, slot *model.TimetableSlot) (time.Time, time.Time, bool) {
	idx := weekdayIndex(slot.Day)
	if idx == 0 || !isValidClockTime(slot.StartTime) || !isValidClockTime(slot.EndTime) {
		return time.Time{}, time.Time{}, false
	}

	// time.Weekday: Sunday=0 … Saturday=6；本系统 Monday=1 … Saturday=6，两者值一致
	date := semesterStart
	for int(date.Weekday()) != idx {
		date = date.AddDate(0, 0, 1)
	}

	startAt := withClock(date, slot.StartTime)
	endAt := withClock(date, slot.EndTime)
	return startAt, endAt, true
}

func withClock(date time.Time, clock string) time.Time {
	hour := int(clock[0]-'0')*10 + int(clock[1]-'0')
	minute := int(clock[3]-'0')*10 + int(clock[4]-'0')
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

func rruleDayCode(day string) string {
	switch day {
	case model.DayMonday:
		return "MO"
	case model.DayTuesday:
		return "TU"
	case model.DayWednesday:
		return "WE"
	case model.DayThursday:
		return "TH"
	case model.DayFriday:
		return "FR"
	case model.DaySaturday:
		return "SA"
	}
	return ""
}
