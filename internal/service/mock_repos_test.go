package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"campus-core/backend/internal/model"
	"campus-core/backend/internal/repository"
)

// ── Mock TxManager ──
//
// 透传实现：直接以同一套 mock 仓储执行 fn，不提供真实事务语义。
// 冲突检测的加锁行为属于集成测试范畴，这里只验证业务编排。

type mockTxManager struct {
	repo *repository.Repository
}

func (m *mockTxManager) WithinTx(_ context.Context, fn func(txRepo *repository.Repository) error) error {
	return fn(m.repo)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student // key: user_id
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	if s, ok := m.students[userID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]*model.Semester
	lockedIDs []string // GetByIDForUpdate 调用记录，按序
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]*model.Semester)}
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	if semester.SemesterID == "" {
		semester.SemesterID = "sem-" + semester.Name
	}
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Semester, error) {
	m.lockedIDs = append(m.lockedIDs, id)
	return m.GetByID(ctx, id)
}

func (m *mockSemesterRepo) GetCurrent(_ context.Context) (*model.Semester, error) {
	for _, s := range m.semesters {
		if s.IsActive {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) ClearActive(_ context.Context) error {
	for _, s := range m.semesters {
		s.IsActive = false
	}
	return nil
}

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	sections      map[string]*model.CourseSection
	registrations []model.SectionRegistration
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*model.CourseSection)}
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.CourseSection, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) List(_ context.Context, semesterID, teacherID string) ([]model.CourseSection, error) {
	var result []model.CourseSection
	for _, s := range m.sections {
		if semesterID != "" && s.SemesterID != semesterID {
			continue
		}
		if teacherID != "" && (s.TeacherID == nil || *s.TeacherID != teacherID) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSectionRepo) ListRegisteredByStudent(_ context.Context, studentID, semesterID string) ([]model.CourseSection, error) {
	var result []model.CourseSection
	for _, reg := range m.registrations {
		if reg.StudentID != studentID || reg.Status != model.RegistrationStatusRegistered {
			continue
		}
		if s, ok := m.sections[reg.SectionID]; ok && s.SemesterID == semesterID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSectionRepo) ListByTeacher(_ context.Context, teacherID, semesterID string) ([]model.CourseSection, error) {
	var result []model.CourseSection
	for _, s := range m.sections {
		if s.SemesterID == semesterID && s.TeacherID != nil && *s.TeacherID == teacherID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSectionRepo) CountRegistered(_ context.Context, sectionID string) (int64, error) {
	var count int64
	for _, reg := range m.registrations {
		if reg.SectionID == sectionID && reg.Status == model.RegistrationStatusRegistered {
			count++
		}
	}
	return count, nil
}

// ── Mock TimetableSlotRepository ──
//
// 读路径手工模拟 Preload：从 sections 引用回填 Section 关联，
// 学期过滤同样经由教学班完成，与真实仓储的联表语义对齐。

type mockSlotRepo struct {
	slots    map[string]*model.TimetableSlot
	sections *mockSectionRepo
	seq      int
}

func newMockSlotRepo(sections *mockSectionRepo) *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[string]*model.TimetableSlot), sections: sections}
}

func (m *mockSlotRepo) attach(slot *model.TimetableSlot) *model.TimetableSlot {
	out := *slot
	if s, ok := m.sections.sections[slot.SectionID]; ok {
		out.Section = s
	}
	return &out
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.TimetableSlot) error {
	if slot.SlotID == "" {
		m.seq++
		slot.SlotID = fmt.Sprintf("slot-%03d", m.seq)
	}
	stored := *slot
	stored.Section = nil
	m.slots[slot.SlotID] = &stored
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id string) (*model.TimetableSlot, error) {
	if s, ok := m.slots[id]; ok {
		return m.attach(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) Update(_ context.Context, slot *model.TimetableSlot) error {
	if _, ok := m.slots[slot.SlotID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *slot
	stored.Section = nil
	m.slots[slot.SlotID] = &stored
	return nil
}

func (m *mockSlotRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.slots[id]; !ok {
		return 0, nil
	}
	delete(m.slots, id)
	return 1, nil
}

func (m *mockSlotRepo) DeleteBySection(_ context.Context, sectionID string) (int64, error) {
	var count int64
	for id, s := range m.slots {
		if s.SectionID == sectionID {
			delete(m.slots, id)
			count++
		}
	}
	return count, nil
}

func (m *mockSlotRepo) List(_ context.Context, filter repository.SlotFilter) ([]model.TimetableSlot, error) {
	var result []model.TimetableSlot
	for _, s := range m.slots {
		withSection := m.attach(s)
		section := withSection.Section

		if filter.SemesterID != "" && (section == nil || section.SemesterID != filter.SemesterID) {
			continue
		}
		if filter.Day != "" && s.Day != filter.Day {
			continue
		}
		if filter.SectionID != "" && s.SectionID != filter.SectionID {
			continue
		}
		if len(filter.SectionIDs) > 0 && !containsString(filter.SectionIDs, s.SectionID) {
			continue
		}
		if filter.RoomNo != "" && (s.RoomNo == nil || *s.RoomNo != filter.RoomNo) {
			continue
		}
		if filter.TeacherID != "" && (section == nil || section.TeacherID == nil || *section.TeacherID != filter.TeacherID) {
			continue
		}
		if filter.CourseID != "" && (section == nil || section.CourseID != filter.CourseID) {
			continue
		}
		result = append(result, *withSection)
	}

	sort.Slice(result, func(i, j int) bool {
		di, dj := weekdayIndex(result[i].Day), weekdayIndex(result[j].Day)
		if di != dj {
			return di < dj
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockSlotRepo) ListForCheck(_ context.Context, semesterID, day string) ([]model.TimetableSlot, error) {
	var result []model.TimetableSlot
	for _, s := range m.slots {
		if s.Day != day {
			continue
		}
		withSection := m.attach(s)
		if withSection.Section == nil || withSection.Section.SemesterID != semesterID {
			continue
		}
		result = append(result, *withSection)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockSlotRepo) DistinctRooms(_ context.Context, semesterID string) ([]string, error) {
	seen := make(map[string]bool)
	for _, s := range m.slots {
		if s.RoomNo == nil {
			continue
		}
		if semesterID != "" {
			withSection := m.attach(s)
			if withSection.Section == nil || withSection.Section.SemesterID != semesterID {
				continue
			}
		}
		seen[*s.RoomNo] = true
	}
	rooms := make([]string, 0, len(seen))
	for r := range seen {
		rooms = append(rooms, r)
	}
	sort.Strings(rooms)
	return rooms, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ── 聚合构建 ──

// mockRepos 暴露各 mock 仓储，便于测试直接预置/检查数据
type mockRepos struct {
	user     *mockUserRepo
	student  *mockStudentRepo
	semester *mockSemesterRepo
	section  *mockSectionRepo
	slot     *mockSlotRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	mocks := &mockRepos{
		user:     newMockUserRepo(),
		student:  newMockStudentRepo(),
		semester: newMockSemesterRepo(),
		section:  newMockSectionRepo(),
	}
	mocks.slot = newMockSlotRepo(mocks.section)

	repo := &repository.Repository{
		User:     mocks.user,
		Student:  mocks.student,
		Semester: mocks.semester,
		Section:  mocks.section,
		Slot:     mocks.slot,
	}
	repo.Tx = &mockTxManager{repo: repo}
	return repo, mocks
}
