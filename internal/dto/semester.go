package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
type CreateSemesterRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	Session   string `json:"session"    binding:"required,max=50"` // 如 "2025-2026"
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"required,datetime=2006-01-02"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Session   string `json:"session"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsActive  bool   `json:"is_active"`
}

// SemesterBrief 学期简要信息（嵌入其他响应）
type SemesterBrief struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Session string `json:"session"`
}
