package dto

// ── 时间表模块 DTO ──

// CreateSlotRequest 创建时间表时段请求
// room_no 缺省时回退到教学班的默认教室；仍为空则视为教室未定
type CreateSlotRequest struct {
	SectionID string  `json:"section_id" binding:"required,uuid"`
	Day       string  `json:"day"        binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime string  `json:"start_time" binding:"required,len=5"` // "09:00"
	EndTime   string  `json:"end_time"   binding:"required,len=5"`
	RoomNo    *string `json:"room_no"    binding:"omitempty,max=50"`
}

// UpdateSlotRequest 更新时间表时段请求（部分字段）
// RoomNo 传空字符串表示清除教室；SectionID 将时段迁移到另一教学班
type UpdateSlotRequest struct {
	SectionID *string `json:"section_id" binding:"omitempty,uuid"`
	Day       *string `json:"day"        binding:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime *string `json:"start_time" binding:"omitempty,len=5"`
	EndTime   *string `json:"end_time"   binding:"omitempty,len=5"`
	RoomNo    *string `json:"room_no"    binding:"omitempty,max=50"`
}

// BulkCreateSlotsRequest 批量创建请求
type BulkCreateSlotsRequest struct {
	Slots []CreateSlotRequest `json:"slots" binding:"required,min=1,dive"`
}

// CheckSlotRequest 冲突检测请求（试运行，不落库）
// exclude_slot_id 用于更新场景下排除时段自身
type CheckSlotRequest struct {
	CreateSlotRequest
	ExcludeSlotID string `json:"exclude_slot_id" binding:"omitempty,uuid"`
}

// SlotListRequest 时段列表查询参数
type SlotListRequest struct {
	SemesterID string `form:"semester_id" binding:"omitempty,uuid"`
	Day        string `form:"day"         binding:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	SectionID  string `form:"section_id"  binding:"omitempty,uuid"`
	RoomNo     string `form:"room_no"     binding:"omitempty,max=50"`
	TeacherID  string `form:"teacher_id"  binding:"omitempty,uuid"`
	CourseID   string `form:"course_id"   binding:"omitempty,uuid"`
}

// SlotResponse 时段信息响应（含教学班展示字段）
type SlotResponse struct {
	ID          string  `json:"id"`
	SectionID   string  `json:"section_id"`
	CourseCode  string  `json:"course_code,omitempty"`
	CourseName  string  `json:"course_name,omitempty"`
	SectionCode string  `json:"section_code,omitempty"`
	TeacherID   *string `json:"teacher_id,omitempty"`
	TeacherName string  `json:"teacher_name,omitempty"`
	SemesterID  string  `json:"semester_id,omitempty"`
	Day         string  `json:"day"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	RoomNo      *string `json:"room_no,omitempty"`
}

// ── 冲突报告 ──

// 冲突维度
const (
	ConflictTypeRoom    = "room"
	ConflictTypeTeacher = "teacher"
	ConflictTypeSection = "section"
)

// ConflictEntry 单条冲突记录
// 携带冲突维度、对方教学班身份与时间范围，可直接用于前端展示
type ConflictEntry struct {
	Type        string  `json:"type"` // room | teacher | section
	SlotID      string  `json:"slot_id"`
	SectionID   string  `json:"section_id"`
	CourseName  string  `json:"course_name,omitempty"`
	SectionCode string  `json:"section_code,omitempty"`
	TeacherName string  `json:"teacher_name,omitempty"`
	RoomNo      *string `json:"room_no,omitempty"`
	Day         string  `json:"day"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Message     string  `json:"message"`
}

// ConflictReport 单时段三维冲突报告
type ConflictReport struct {
	HasConflicts bool            `json:"has_conflicts"`
	Room         []ConflictEntry `json:"room"`
	Teacher      []ConflictEntry `json:"teacher"`
	Section      []ConflictEntry `json:"section"`
}

// ConflictPair 全量巡检中一对相互冲突的时段
type ConflictPair struct {
	Type        string       `json:"type"` // room | teacher
	Day         string       `json:"day"`
	RoomNo      *string      `json:"room_no,omitempty"`
	TeacherID   *string      `json:"teacher_id,omitempty"`
	TeacherName string       `json:"teacher_name,omitempty"`
	First       SlotResponse `json:"first"`
	Second      SlotResponse `json:"second"`
	Message     string       `json:"message"`
}

// AllConflictsResponse 学期级全量冲突巡检结果
type AllConflictsResponse struct {
	Room    []ConflictPair `json:"room"`
	Teacher []ConflictPair `json:"teacher"`
	Total   int            `json:"total"`
}

// ── 批量创建结果 ──

// BulkSlotFailure 批量创建中的单项失败
type BulkSlotFailure struct {
	Index  int               `json:"index"`
	Slot   CreateSlotRequest `json:"slot"`
	Reason string            `json:"reason"`
}

// BulkCreateResult 批量创建结果（部分成功为约定行为）
type BulkCreateResult struct {
	Success []SlotResponse    `json:"success"`
	Failed  []BulkSlotFailure `json:"failed"`
}

// ── 时间表视图 ──

// TimetableViewRequest 视图查询参数
// semester_id 缺省时回退到当前激活学期
type TimetableViewRequest struct {
	SemesterID string `form:"semester_id" binding:"omitempty,uuid"`
}

// WeekTimetable 按星期分组的一周时间表
// 固定含周一至周六 6 个键，无课的天为空序列
type WeekTimetable map[string][]SlotResponse

// TimetableResponse 通用时间表响应
type TimetableResponse struct {
	Semester SemesterBrief `json:"semester"`
	Days     WeekTimetable `json:"days"`
}

// TeacherSectionLoad 教师视图中教学班的选课负载
type TeacherSectionLoad struct {
	SectionID     string `json:"section_id"`
	CourseCode    string `json:"course_code"`
	CourseName    string `json:"course_name"`
	SectionCode   string `json:"section_code"`
	EnrolledCount int64  `json:"enrolled_count"`
}

// TeacherTimetableResponse 教师时间表响应（附带每班选课人数）
type TeacherTimetableResponse struct {
	TimetableResponse
	Sections []TeacherSectionLoad `json:"sections"`
}

// RoomListResponse 教室列表响应
type RoomListResponse struct {
	Rooms []string `json:"rooms"`
}

// ── 导出 ──

// PDFPayloadRequest 渲染载荷查询参数
type PDFPayloadRequest struct {
	Type       string `form:"type"        binding:"required,oneof=student teacher room master"`
	ID         string `form:"id"          binding:"omitempty"`
	SemesterID string `form:"semester_id" binding:"omitempty,uuid"`
}

// PDFPayload 交给外部渲染层的展示载荷
type PDFPayload struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Session  string        `json:"session"`
	Semester string        `json:"semester"`
	Days     WeekTimetable `json:"days"`
}
