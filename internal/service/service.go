package service

import (
	"go.uber.org/zap"

	"campus-core/backend/internal/repository"
	"campus-core/backend/pkg/jwt"
	"campus-core/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	Semester  SemesterService
	Section   SectionService
	Timetable TimetableService
	View      TimetableViewService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(repo, jwtMgr, rdb, logger),
		Semester:  NewSemesterService(repo, logger),
		Section:   NewSectionService(repo, logger),
		Timetable: NewTimetableService(repo, logger),
		View:      NewTimetableViewService(repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
