package dto

// ── 教学班模块 DTO ──

// SectionListRequest 教学班列表查询参数
type SectionListRequest struct {
	SemesterID string `form:"semester_id" binding:"omitempty,uuid"`
	TeacherID  string `form:"teacher_id"  binding:"omitempty,uuid"`
}

// SectionResponse 教学班信息响应
type SectionResponse struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"course_id"`
	CourseCode  string  `json:"course_code"`
	CourseName  string  `json:"course_name"`
	SectionCode string  `json:"section_code"`
	SemesterID  string  `json:"semester_id"`
	TeacherID   *string `json:"teacher_id,omitempty"`
	TeacherName string  `json:"teacher_name,omitempty"`
	DefaultRoom *string `json:"default_room,omitempty"`
}
