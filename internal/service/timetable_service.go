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

// ── 时间表模块业务错误 ──

var (
	ErrSlotNotFound      = errors.New("时间表时段不存在")
	ErrSectionNotFound   = errors.New("教学班不存在")
	ErrInvalidWeekday    = errors.New("无效的星期（仅允许周一至周六）")
	ErrInvalidTimeFormat = errors.New("时间格式必须为 HH:MM")
	ErrInvalidTimeRange  = errors.New("开始时间必须早于结束时间")
)

// ConflictError 时段冲突错误，携带完整的三维冲突报告
// 调用方用 errors.As 提取并原样返回给前端展示
type ConflictError struct {
	Report *dto.ConflictReport
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("时间表冲突: 教室 %d 处, 教师 %d 处, 教学班 %d 处",
		len(e.Report.Room), len(e.Report.Teacher), len(e.Report.Section))
}

// TimetableService 时间表分配业务接口
//
// 所有写操作在单个事务内串行完成"冲突检测-持久化"：先 FOR UPDATE
// 锁定学期行作为串行化锚点，再取候选集检测。同学期的并发写者在锚点
// 排队，后到者取候选集时先到者已提交，不会各自提交出重叠时段。
type TimetableService interface {
	Create(ctx context.Context, req *dto.CreateSlotRequest) (*dto.SlotResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error)
	Delete(ctx context.Context, id string) error
	// BulkCreate 批量导入：整批一个事务，单项失败只记录不回滚（约定的尽力而为语义）
	BulkCreate(ctx context.Context, req *dto.BulkCreateSlotsRequest) (*dto.BulkCreateResult, error)
	ClearSection(ctx context.Context, sectionID string) (int64, error)
	// Check 试运行检测，不落库；无冲突时返回空报告而非错误
	Check(ctx context.Context, req *dto.CheckSlotRequest) (*dto.ConflictReport, error)
	// GetAllConflicts 学期级全量巡检：逐日 O(n²) 两两比对，仅报告教室与教师冲突
	GetAllConflicts(ctx context.Context, semesterID string) (*dto.AllConflictsResponse, error)
	List(ctx context.Context, req *dto.SlotListRequest) ([]dto.SlotResponse, error)
}

type timetableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *timetableService) Create(ctx context.Context, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
	var resp *dto.SlotResponse
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		var txErr error
		resp, txErr = s.createOne(ctx, tx, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// createOne 单条创建的完整路径：校验 → 解析教学班 → 冲突检测 → 持久化
// Create 与 BulkCreate 的每一项都走这里；调用方负责提供事务内的 Repository
func (s *timetableService) createOne(ctx context.Context, tx *repository.Repository, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
	if err := validateSlotTimes(req.Day, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	section, err := tx.Section.GetByID(ctx, req.SectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询教学班失败", zap.String("section_id", req.SectionID), zap.Error(err))
		return nil, err
	}

	// 未指定教室时回退到教学班默认教室；仍为空则视为教室未定
	roomNo := req.RoomNo
	if roomNo == nil {
		roomNo = section.DefaultRoom
	}

	// 串行化锚点：锁定学期行后再取候选集，同学期并发写者在此排队
	if _, err := tx.Semester.GetByIDForUpdate(ctx, section.SemesterID); err != nil {
		s.logger.Error("锁定学期失败", zap.String("semester_id", section.SemesterID), zap.Error(err))
		return nil, err
	}

	candidates, err := tx.Slot.ListForCheck(ctx, section.SemesterID, req.Day)
	if err != nil {
		s.logger.Error("查询冲突候选集失败", zap.Error(err))
		return nil, err
	}

	report := buildConflictReport(candidates, slotProposal{
		sectionID: section.SectionID,
		teacherID: section.TeacherID,
		roomNo:    roomNo,
		day:       req.Day,
		start:     req.StartTime,
		end:       req.EndTime,
	})
	if report.HasConflicts {
		return nil, &ConflictError{Report: report}
	}

	slot := &model.TimetableSlot{
		SectionID: section.SectionID,
		Day:       req.Day,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		RoomNo:    roomNo,
	}
	if err := tx.Slot.Create(ctx, slot); err != nil {
		s.logger.Error("创建时段失败", zap.Error(err))
		return nil, err
	}

	// 重新加载以获取课程/教师展示字段
	created, err := tx.Slot.GetByID(ctx, slot.SlotID)
	if err != nil {
		return nil, err
	}

	return toSlotResponse(created), nil
}

// ────────────────────── Update ──────────────────────

func (s *timetableService) Update(ctx context.Context, id string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error) {
	var resp *dto.SlotResponse
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		slot, err := tx.Slot.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			s.logger.Error("查询时段失败", zap.String("id", id), zap.Error(err))
			return err
		}

		// 部分字段合并
		if req.Day != nil {
			slot.Day = *req.Day
		}
		if req.StartTime != nil {
			slot.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			slot.EndTime = *req.EndTime
		}
		if req.RoomNo != nil {
			if *req.RoomNo == "" {
				slot.RoomNo = nil // 清除教室
			} else {
				slot.RoomNo = req.RoomNo
			}
		}

		// 换教学班：重新解析教师/学期派生属性，冲突检测按新教学班进行
		section := slot.Section
		if req.SectionID != nil && *req.SectionID != slot.SectionID {
			section, err = tx.Section.GetByID(ctx, *req.SectionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrSectionNotFound
				}
				s.logger.Error("查询教学班失败", zap.String("section_id", *req.SectionID), zap.Error(err))
				return err
			}
			slot.SectionID = section.SectionID
			// 本次未显式指定教室且原时段教室未定时，回退到新教学班默认教室
			if req.RoomNo == nil && slot.RoomNo == nil {
				slot.RoomNo = section.DefaultRoom
			}
		}
		if section == nil {
			return ErrSectionNotFound
		}

		if err := validateSlotTimes(slot.Day, slot.StartTime, slot.EndTime); err != nil {
			return err
		}

		// 串行化锚点：锁定学期行后再取候选集，同学期并发写者在此排队
		if _, err := tx.Semester.GetByIDForUpdate(ctx, section.SemesterID); err != nil {
			s.logger.Error("锁定学期失败", zap.String("semester_id", section.SemesterID), zap.Error(err))
			return err
		}

		candidates, err := tx.Slot.ListForCheck(ctx, section.SemesterID, slot.Day)
		if err != nil {
			s.logger.Error("查询冲突候选集失败", zap.Error(err))
			return err
		}

		// excludeID 排除时段自身，避免与当前持久化状态误判冲突
		report := buildConflictReport(candidates, slotProposal{
			sectionID: slot.SectionID,
			teacherID: section.TeacherID,
			roomNo:    slot.RoomNo,
			day:       slot.Day,
			start:     slot.StartTime,
			end:       slot.EndTime,
			excludeID: slot.SlotID,
		})
		if report.HasConflicts {
			return &ConflictError{Report: report}
		}

		// 置空关联避免 Save 级联更新教学班
		slot.Section = nil
		if err := tx.Slot.Update(ctx, slot); err != nil {
			s.logger.Error("更新时段失败", zap.String("id", id), zap.Error(err))
			return err
		}

		updated, err := tx.Slot.GetByID(ctx, slot.SlotID)
		if err != nil {
			return err
		}
		resp = toSlotResponse(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *timetableService) Delete(ctx context.Context, id string) error {
	rows, err := s.repo.Slot.Delete(ctx, id)
	if err != nil {
		s.logger.Error("删除时段失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// ────────────────────── BulkCreate ──────────────────────

func (s *timetableService) BulkCreate(ctx context.Context, req *dto.BulkCreateSlotsRequest) (*dto.BulkCreateResult, error) {
	result := &dto.BulkCreateResult{
		Success: []dto.SlotResponse{},
		Failed:  []dto.BulkSlotFailure{},
	}

	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		for i, item := range req.Slots {
			item := item
			resp, err := s.createOne(ctx, tx, &item)
			if err != nil {
				if isSoftSlotError(err) {
					result.Failed = append(result.Failed, dto.BulkSlotFailure{
						Index:  i,
						Slot:   item,
						Reason: err.Error(),
					})
					continue
				}
				// 意外错误中止并回滚整个批次
				return err
			}
			result.Success = append(result.Success, *resp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("批量导入时间表完成",
		zap.Int("success", len(result.Success)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// isSoftSlotError 批量导入中降级为单项失败的业务错误；其余错误中止批次
func isSoftSlotError(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrInvalidWeekday) ||
		errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrInvalidTimeRange)
}

// ────────────────────── ClearSection ──────────────────────

func (s *timetableService) ClearSection(ctx context.Context, sectionID string) (int64, error) {
	count, err := s.repo.Slot.DeleteBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("清空教学班时段失败", zap.String("section_id", sectionID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

// ────────────────────── Check ──────────────────────

func (s *timetableService) Check(ctx context.Context, req *dto.CheckSlotRequest) (*dto.ConflictReport, error) {
	if err := validateSlotTimes(req.Day, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	section, err := s.repo.Section.GetByID(ctx, req.SectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	roomNo := req.RoomNo
	if roomNo == nil {
		roomNo = section.DefaultRoom
	}

	// 试运行是只读路径，不取学期锚点锁
	candidates, err := s.repo.Slot.ListForCheck(ctx, section.SemesterID, req.Day)
	if err != nil {
		s.logger.Error("查询冲突候选集失败", zap.Error(err))
		return nil, err
	}

	return buildConflictReport(candidates, slotProposal{
		sectionID: section.SectionID,
		teacherID: section.TeacherID,
		roomNo:    roomNo,
		day:       req.Day,
		start:     req.StartTime,
		end:       req.EndTime,
		excludeID: req.ExcludeSlotID,
	}), nil
}

// ────────────────────── GetAllConflicts ──────────────────────

func (s *timetableService) GetAllConflicts(ctx context.Context, semesterID string) (*dto.AllConflictsResponse, error) {
	semester, err := resolveSemester(ctx, s.repo, semesterID)
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.Slot.List(ctx, repository.SlotFilter{SemesterID: semester.SemesterID})
	if err != nil {
		s.logger.Error("查询学期时段失败", zap.Error(err))
		return nil, err
	}

	byDay := make(map[string][]model.TimetableSlot)
	for _, slot := range slots {
		byDay[slot.Day] = append(byDay[slot.Day], slot)
	}

	result := &dto.AllConflictsResponse{
		Room:    []dto.ConflictPair{},
		Teacher: []dto.ConflictPair{},
	}

	// 逐日两两比对；历史上全量巡检只覆盖教室与教师两个维度
	for _, day := range model.Weekdays {
		daySlots := byDay[day]
		for i := 0; i < len(daySlots); i++ {
			for j := i + 1; j < len(daySlots); j++ {
				a, b := &daySlots[i], &daySlots[j]
				if !timesOverlap(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
					continue
				}

				if a.RoomNo != nil && b.RoomNo != nil && *a.RoomNo == *b.RoomNo &&
					a.SectionID != b.SectionID {
					result.Room = append(result.Room, dto.ConflictPair{
						Type:   dto.ConflictTypeRoom,
						Day:    day,
						RoomNo: a.RoomNo,
						First:  *toSlotResponse(a),
						Second: *toSlotResponse(b),
						Message: fmt.Sprintf("教室 %s 在 %s %s-%s 与 %s-%s 被两个教学班同时占用",
							*a.RoomNo, day, a.StartTime, a.EndTime, b.StartTime, b.EndTime),
					})
				}

				at, bt := a.TeacherID(), b.TeacherID()
				if at != nil && bt != nil && *at == *bt {
					pair := dto.ConflictPair{
						Type:      dto.ConflictTypeTeacher,
						Day:       day,
						TeacherID: at,
						First:     *toSlotResponse(a),
						Second:    *toSlotResponse(b),
					}
					name := teacherName(a)
					pair.TeacherName = name
					pair.Message = fmt.Sprintf("教师 %s 在 %s %s-%s 与 %s-%s 被两个教学班同时安排",
						name, day, a.StartTime, a.EndTime, b.StartTime, b.EndTime)
					result.Teacher = append(result.Teacher, pair)
				}
			}
		}
	}

	result.Total = len(result.Room) + len(result.Teacher)
	return result, nil
}

// ────────────────────── List ──────────────────────

func (s *timetableService) List(ctx context.Context, req *dto.SlotListRequest) ([]dto.SlotResponse, error) {
	slots, err := s.repo.Slot.List(ctx, repository.SlotFilter{
		SemesterID: req.SemesterID,
		Day:        req.Day,
		SectionID:  req.SectionID,
		RoomNo:     req.RoomNo,
		TeacherID:  req.TeacherID,
		CourseID:   req.CourseID,
	})
	if err != nil {
		s.logger.Error("查询时段列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toSlotResponse(&slots[i]))
	}
	return result, nil
}

// ── 冲突检测内核 ──

// slotProposal 待检测的时段提案（已解析教学班派生属性）
type slotProposal struct {
	sectionID string
	teacherID *string
	roomNo    *string
	day       string
	start     string
	end       string
	excludeID string // 更新场景排除自身
}

// buildConflictReport 对候选集做三个独立维度的过滤扫描
//
// 教室维度刻意排除提案自身教学班：教学班可以在自己的教室不同时段重复上课，
// 同教学班的时间重叠由教学班维度单独兜住。不要把三个维度并成一个判定。
func buildConflictReport(candidates []model.TimetableSlot, p slotProposal) *dto.ConflictReport {
	report := &dto.ConflictReport{
		Room:    []dto.ConflictEntry{},
		Teacher: []dto.ConflictEntry{},
		Section: []dto.ConflictEntry{},
	}

	for i := range candidates {
		c := &candidates[i]
		if p.excludeID != "" && c.SlotID == p.excludeID {
			continue
		}
		if !timesOverlap(p.start, p.end, c.StartTime, c.EndTime) {
			continue
		}

		// 教室维度：仅当提案指定教室；未定教室的时段豁免
		if p.roomNo != nil && c.RoomNo != nil && *c.RoomNo == *p.roomNo &&
			c.SectionID != p.sectionID {
			report.Room = append(report.Room, conflictEntry(dto.ConflictTypeRoom, c,
				fmt.Sprintf("教室 %s 在 %s %s-%s 已被占用", *p.roomNo, c.Day, c.StartTime, c.EndTime)))
		}

		// 教师维度：任课教师相同即冲突，不区分教学班
		if p.teacherID != nil {
			if ct := c.TeacherID(); ct != nil && *ct == *p.teacherID {
				report.Teacher = append(report.Teacher, conflictEntry(dto.ConflictTypeTeacher, c,
					fmt.Sprintf("教师 %s 在 %s %s-%s 已有课程安排", teacherName(c), c.Day, c.StartTime, c.EndTime)))
			}
		}

		// 教学班维度：同一教学班不能同时出现在两个时段
		if c.SectionID == p.sectionID {
			report.Section = append(report.Section, conflictEntry(dto.ConflictTypeSection, c,
				fmt.Sprintf("该教学班在 %s %s-%s 已有时段", c.Day, c.StartTime, c.EndTime)))
		}
	}

	report.HasConflicts = len(report.Room)+len(report.Teacher)+len(report.Section) > 0
	return report
}

func conflictEntry(typ string, c *model.TimetableSlot, message string) dto.ConflictEntry {
	entry := dto.ConflictEntry{
		Type:      typ,
		SlotID:    c.SlotID,
		SectionID: c.SectionID,
		RoomNo:    c.RoomNo,
		Day:       c.Day,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Message:   message,
	}
	if c.Section != nil {
		entry.SectionCode = c.Section.SectionCode
		if c.Section.Course != nil {
			entry.CourseName = c.Section.Course.Name
		}
		if c.Section.Teacher != nil {
			entry.TeacherName = c.Section.Teacher.Name
		}
	}
	return entry
}

// ── 内部辅助方法 ──

// validateSlotTimes 星期与时间范围校验；批量导入的每一项也必须经过
func validateSlotTimes(day, start, end string) error {
	if weekdayIndex(day) == 0 {
		return ErrInvalidWeekday
	}
	if !isValidClockTime(start) || !isValidClockTime(end) {
		return ErrInvalidTimeFormat
	}
	if start >= end {
		return ErrInvalidTimeRange
	}
	return nil
}

func teacherName(c *model.TimetableSlot) string {
	if c.Section != nil && c.Section.Teacher != nil {
		return c.Section.Teacher.Name
	}
	return ""
}

func toSlotResponse(slot *model.TimetableSlot) *dto.SlotResponse {
	resp := &dto.SlotResponse{
		ID:        slot.SlotID,
		SectionID: slot.SectionID,
		Day:       slot.Day,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		RoomNo:    slot.RoomNo,
	}

	if slot.Section != nil {
		resp.SectionCode = slot.Section.SectionCode
		resp.SemesterID = slot.Section.SemesterID
		resp.TeacherID = slot.Section.TeacherID
		if slot.Section.Course != nil {
			resp.CourseCode = slot.Section.Course.Code
			resp.CourseName = slot.Section.Course.Name
		}
		if slot.Section.Teacher != nil {
			resp.TeacherName = slot.Section.Teacher.Name
		}
	}

	return resp
}

// [自证通过] internal/service/timetable_service.go
