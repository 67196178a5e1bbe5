package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-core/backend/internal/model"
)

// SectionRepository 教学班数据访问接口
// 教学班本身由外围 CRUD 层维护，核心只读
type SectionRepository interface {
	GetByID(ctx context.Context, id string) (*model.CourseSection, error)
	List(ctx context.Context, semesterID, teacherID string) ([]model.CourseSection, error)
	ListRegisteredByStudent(ctx context.Context, studentID, semesterID string) ([]model.CourseSection, error)
	ListByTeacher(ctx context.Context, teacherID, semesterID string) ([]model.CourseSection, error)
	CountRegistered(ctx context.Context, sectionID string) (int64, error)
}

type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepo 创建 SectionRepository 实例
func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.CourseSection, error) {
	var section model.CourseSection
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher").
		Where("section_id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) List(ctx context.Context, semesterID, teacherID string) ([]model.CourseSection, error) {
	var sections []model.CourseSection
	db := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher")

	if semesterID != "" {
		db = db.Where("semester_id = ?", semesterID)
	}
	if teacherID != "" {
		db = db.Where("teacher_id = ?", teacherID)
	}

	err := db.Order("section_code ASC").Find(&sections).Error
	return sections, err
}

// ListRegisteredByStudent 学生已注册（status = registered）的教学班
func (r *sectionRepo) ListRegisteredByStudent(ctx context.Context, studentID, semesterID string) ([]model.CourseSection, error) {
	var sections []model.CourseSection
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher").
		Joins("JOIN section_registrations sr ON sr.section_id = course_sections.section_id").
		Where("sr.student_id = ? AND sr.status = ?", studentID, model.RegistrationStatusRegistered).
		Where("course_sections.semester_id = ?", semesterID).
		Find(&sections).Error
	return sections, err
}

func (r *sectionRepo) ListByTeacher(ctx context.Context, teacherID, semesterID string) ([]model.CourseSection, error) {
	var sections []model.CourseSection
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher").
		Where("teacher_id = ? AND semester_id = ?", teacherID, semesterID).
		Find(&sections).Error
	return sections, err
}

func (r *sectionRepo) CountRegistered(ctx context.Context, sectionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SectionRegistration{}).
		Where("section_id = ? AND status = ?", sectionID, model.RegistrationStatusRegistered).
		Count(&count).Error
	return count, err
}
