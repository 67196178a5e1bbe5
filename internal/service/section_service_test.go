package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"campus-core/backend/internal/dto"
)

func setupTestSectionService() (SectionService, *mockRepos) {
	repo, mocks := newMockRepository()
	seedTimetableFixture(mocks)
	svc := NewSectionService(repo, zap.NewNop())
	return svc, mocks
}

func TestSectionService_GetByID(t *testing.T) {
	svc, _ := setupTestSectionService()

	result, err := svc.GetByID(context.Background(), "sec-a")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if result.CourseCode != "CS101" || result.TeacherName != "张伟" {
		t.Errorf("展示字段错误: %+v", result)
	}
	if result.DefaultRoom == nil || *result.DefaultRoom != "R101" {
		t.Errorf("期望默认教室 R101，实际=%v", result.DefaultRoom)
	}

	if _, err := svc.GetByID(context.Background(), "sec-missing"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("期望 ErrSectionNotFound，实际: %v", err)
	}
}

func TestSectionService_List(t *testing.T) {
	svc, _ := setupTestSectionService()

	all, err := svc.List(context.Background(), &dto.SectionListRequest{SemesterID: "sem-001"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("期望 4 个教学班，实际 %d", len(all))
	}

	byTeacher, _ := svc.List(context.Background(), &dto.SectionListRequest{TeacherID: "teacher-001"})
	if len(byTeacher) != 2 {
		t.Errorf("按教师过滤期望 2 个，实际 %d", len(byTeacher))
	}
}
