package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-core/backend/internal/dto"
	"campus-core/backend/internal/service"
	"campus-core/backend/pkg/response"
)

// SectionHandler 教学班模块 HTTP 处理器（只读）
type SectionHandler struct {
	sectionSvc service.SectionService
}

// NewSectionHandler 创建 SectionHandler
func NewSectionHandler(sectionSvc service.SectionService) *SectionHandler {
	return &SectionHandler{sectionSvc: sectionSvc}
}

// List 教学班列表
// GET /api/v1/sections
func (h *SectionHandler) List(c *gin.Context) {
	var req dto.SectionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sectionSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// GetByID 教学班详情
// GET /api/v1/sections/:id
func (h *SectionHandler) GetByID(c *gin.Context) {
	result, err := h.sectionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSectionNotFound) {
			response.NotFound(c, 13001, "教学班不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
