package handler

import "campus-core/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Semester  *SemesterHandler
	Section   *SectionHandler
	Timetable *TimetableHandler
	View      *TimetableViewHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Semester:  NewSemesterHandler(svc.Semester),
		Section:   NewSectionHandler(svc.Section),
		Timetable: NewTimetableHandler(svc.Timetable),
		View:      NewTimetableViewHandler(svc.View),
		Export:    NewExportHandler(svc.Export),
	}
}
