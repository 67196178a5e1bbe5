package model

// Course 课程表 — 对应 courses
type Course struct {
	CourseID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	DepartmentID *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	Code         string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name         string  `gorm:"type:varchar(200);not null"                     json:"name"`
	Credits      int     `gorm:"type:smallint;not null;default:3"               json:"credits"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// CourseSection 教学班表 — 对应 course_sections
// 一门课在一个学期内的一个开班；teacher_id 与 default_room 可空
type CourseSection struct {
	SectionID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"section_id"`
	CourseID    string  `gorm:"type:uuid;not null"                             json:"course_id"`
	SemesterID  string  `gorm:"type:uuid;not null"                             json:"semester_id"`
	SectionCode string  `gorm:"type:varchar(20);not null"                      json:"section_code"`
	TeacherID   *string `gorm:"type:uuid"                                      json:"teacher_id,omitempty"`
	DefaultRoom *string `gorm:"type:varchar(50)"                               json:"default_room,omitempty"`
	BaseModel

	// 关联
	Course   *Course   `gorm:"foreignKey:CourseID;references:CourseID"     json:"course,omitempty"`
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
	Teacher  *User     `gorm:"foreignKey:TeacherID;references:UserID"      json:"teacher,omitempty"`
}

// TableName 指定表名
func (CourseSection) TableName() string { return "course_sections" }

// SectionRegistration 选课记录表 — 对应 section_registrations
// status: registered | dropped | completed
type SectionRegistration struct {
	RegistrationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"registration_id"`
	SectionID      string `gorm:"type:uuid;not null"                             json:"section_id"`
	StudentID      string `gorm:"type:uuid;not null"                             json:"student_id"`
	Status         string `gorm:"type:varchar(20);not null;default:'registered'" json:"status"`
	BaseModel

	// 关联
	Section *CourseSection `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
	Student *Student       `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (SectionRegistration) TableName() string { return "section_registrations" }

// RegistrationStatusRegistered 在读状态，时间表视图只统计此状态
const RegistrationStatusRegistered = "registered"
