package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"campus-core/backend/internal/service"
	"campus-core/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportXLSX 导出学期总课表（Excel 网格）
// GET /api/v1/timetable/export/xlsx?semester_id=xxx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportMasterXLSX(c.Request.Context(), c.Query("semester_id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, buf.Bytes(), filename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// ExportICS 导出个人课表为 iCalendar 订阅
// GET /api/v1/timetable/export/ics?type=student|teacher&semester_id=xxx
func (h *ExportHandler) ExportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	viewType := c.DefaultQuery("type", "student")

	buf, filename, err := h.exportSvc.ExportICS(c.Request.Context(), viewType, userID, c.Query("semester_id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, buf.Bytes(), filename, "text/calendar; charset=utf-8")
}

// writeDownload 设置下载响应头并写入文件内容
func writeDownload(c *gin.Context, data []byte, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", contentType)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoSlots):
		response.NotFound(c, 15001, "暂无可导出的时间表数据")
	case errors.Is(err, service.ErrExportInvalidType):
		response.BadRequest(c, 15002, "不支持的导出类型")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13002, "学生档案不存在")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 12003, "学期不存在")
	case errors.Is(err, service.ErrNoActiveSemester):
		response.NotFound(c, 12002, "没有激活的学期")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
