package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-core/backend/internal/dto"
	"campus-core/backend/internal/model"
	"campus-core/backend/internal/repository"
)

// SectionService 教学班只读业务接口
// 教学班的增删改属于外围 CRUD 层，核心只消费
type SectionService interface {
	GetByID(ctx context.Context, id string) (*dto.SectionResponse, error)
	List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionResponse, error)
}

type sectionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSectionService 创建 SectionService 实例
func NewSectionService(repo *repository.Repository, logger *zap.Logger) SectionService {
	return &sectionService{repo: repo, logger: logger}
}

func (s *sectionService) GetByID(ctx context.Context, id string) (*dto.SectionResponse, error) {
	section, err := s.repo.Section.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询教学班失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSectionResponse(section), nil
}

func (s *sectionService) List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionResponse, error) {
	sections, err := s.repo.Section.List(ctx, req.SemesterID, req.TeacherID)
	if err != nil {
		s.logger.Error("查询教学班列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SectionResponse, 0, len(sections))
	for i := range sections {
		result = append(result, *toSectionResponse(&sections[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func toSectionResponse(section *model.CourseSection) *dto.SectionResponse {
	resp := &dto.SectionResponse{
		ID:          section.SectionID,
		CourseID:    section.CourseID,
		SectionCode: section.SectionCode,
		SemesterID:  section.SemesterID,
		TeacherID:   section.TeacherID,
		DefaultRoom: section.DefaultRoom,
	}
	if section.Course != nil {
		resp.CourseCode = section.Course.Code
		resp.CourseName = section.Course.Name
	}
	if section.Teacher != nil {
		resp.TeacherName = section.Teacher.Name
	}
	return resp
}
