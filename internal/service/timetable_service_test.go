package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"campus-core/backend/internal/dto"
	"campus-core/backend/internal/model"
)

// ── 测试辅助 ──

func strPtr(s string) *string { return &s }

// seedTimetableFixture 预置一个激活学期与四个教学班：
//
//	sec-a: CS101/A 张伟任课，默认教室 R101
//	sec-b: MA201/A 李娜任课，无默认教室
//	sec-c: PH301/A 张伟任课（与 sec-a 同教师）
//	sec-d: EN101/A 无任课教师，无默认教室
func seedTimetableFixture(mocks *mockRepos) {
	mocks.semester.semesters["sem-001"] = &model.Semester{
		SemesterID: "sem-001",
		Name:       "2025-2026 秋季学期",
		Session:    "2025-2026",
		IsActive:   true,
	}

	teacherZhang := &model.User{UserID: "teacher-001", Name: "张伟", Role: "teacher"}
	teacherLi := &model.User{UserID: "teacher-002", Name: "李娜", Role: "teacher"}

	mocks.section.sections["sec-a"] = &model.CourseSection{
		SectionID:   "sec-a",
		CourseID:    "course-cs101",
		SemesterID:  "sem-001",
		SectionCode: "A",
		TeacherID:   strPtr("teacher-001"),
		DefaultRoom: strPtr("R101"),
		Course:      &model.Course{CourseID: "course-cs101", Code: "CS101", Name: "计算机导论"},
		Teacher:     teacherZhang,
	}
	mocks.section.sections["sec-b"] = &model.CourseSection{
		SectionID:   "sec-b",
		CourseID:    "course-ma201",
		SemesterID:  "sem-001",
		SectionCode: "A",
		TeacherID:   strPtr("teacher-002"),
		Course:      &model.Course{CourseID: "course-ma201", Code: "MA201", Name: "高等数学"},
		Teacher:     teacherLi,
	}
	mocks.section.sections["sec-c"] = &model.CourseSection{
		SectionID:   "sec-c",
		CourseID:    "course-ph301",
		SemesterID:  "sem-001",
		SectionCode: "A",
		TeacherID:   strPtr("teacher-001"),
		Course:      &model.Course{CourseID: "course-ph301", Code: "PH301", Name: "大学物理"},
		Teacher:     teacherZhang,
	}
	mocks.section.sections["sec-d"] = &model.CourseSection{
		SectionID:   "sec-d",
		CourseID:    "course-en101",
		SemesterID:  "sem-001",
		SectionCode: "A",
		Course:      &model.Course{CourseID: "course-en101", Code: "EN101", Name: "大学英语"},
	}
}

func setupTestTimetableService() (TimetableService, *mockRepos) {
	repo, mocks := newMockRepository()
	seedTimetableFixture(mocks)
	svc := NewTimetableService(repo, zap.NewNop())
	return svc, mocks
}

func mustCreateSlot(t *testing.T, svc TimetableService, req *dto.CreateSlotRequest) *dto.SlotResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("预置时段创建失败: %v", err)
	}
	return resp
}

// ── Create 测试 ──

func TestTimetableService_Create_Success(t *testing.T) {
	svc, _ := setupTestTimetableService()

	resp, err := svc.Create(context.Background(), &dto.CreateSlotRequest{
		SectionID: "sec-b",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomNo:    strPtr("R205"),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.ID == "" {
		t.Error("应分配时段 ID")
	}
	if resp.CourseCode != "MA201" || resp.CourseName != "高等数学" {
		t.Errorf("课程展示字段错误: %s %s", resp.CourseCode, resp.CourseName)
	}
	if resp.TeacherName != "李娜" {
		t.Errorf("期望教师=李娜，实际=%s", resp.TeacherName)
	}
	if resp.RoomNo == nil || *resp.RoomNo != "R205" {
		t.Errorf("期望教室=R205，实际=%v", resp.RoomNo)
	}
}

func TestTimetableService_Create_RoomFallbackToDefault(t *testing.T) {
	svc, _ := setupTestTimetableService()

	// sec-a 有默认教室 R101，未指定教室时回退
	resp := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayTuesday,
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	if resp.RoomNo == nil || *resp.RoomNo != "R101" {
		t.Errorf("期望回退到默认教室 R101，实际=%v", resp.RoomNo)
	}

	// sec-b 无默认教室，教室保持未定
	resp2 := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b",
		Day:       model.DayTuesday,
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	if resp2.RoomNo != nil {
		t.Errorf("无默认教室时 RoomNo 应为 nil，实际=%v", *resp2.RoomNo)
	}
}

func TestTimetableService_Create_RoomConflict(t *testing.T) {
	svc, _ := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomNo:    strPtr("R101"),
	})

	// sec-a 与 sec-b 教师不同、教学班不同，R101 重叠只产生教室维度冲突
	_, err := svc.Create(context.Background(), &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:30",
		EndTime:   "10:30",
		RoomNo:    strPtr("R101"),
	})

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("期望 ConflictError，实际: %v", err)
	}
	if len(ce.Report.Room) != 1 {
		t.Errorf("期望 1 处教室冲突，实际 %d", len(ce.Report.Room))
	}
	if len(ce.Report.Teacher) != 0 || len(ce.Report.Section) != 0 {
		t.Errorf("教师/教学班维度不应有冲突: teacher=%d section=%d",
			len(ce.Report.Teacher), len(ce.Report.Section))
	}
	if !ce.Report.HasConflicts {
		t.Error("HasConflicts 应为 true")
	}
}

func TestTimetableService_Create_BoundaryTouchNoConflict(t *testing.T) {
	svc, _ := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b",
		Day:       model.DayMonday,
		StartTime: "09:30",
		EndTime:   "10:30",
		RoomNo:    strPtr("R101"),
	})

	// 半开区间：10:30 结束与 10:30 开始首尾相接，不算冲突
	_, err := svc.Create(context.Background(), &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "10:30",
		EndTime:   "11:30",
		RoomNo:    strPtr("R101"),
	})
	if err != nil {
		t.Errorf("首尾相接的时段不应冲突: %v", err)
	}
}

func TestTimetableService_Create_TeacherConflict(t *testing.T) {
	svc, _ := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayWednesday,
		StartTime: "14:00",
		EndTime:   "15:00",
		RoomNo:    strPtr("R101"),
	})

	// sec-c 与 sec-a 同教师张伟，教室不同：仅教师维度冲突
	_, err := svc.Create(context.Background(), &dto.CreateSlotRequest{
		SectionID: "sec-c",
		Day:       model.DayWednesday,
		StartTime: "14:30",
		EndTime:   "15:30",
		RoomNo:    strPtr("R999"),
	})

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("期望 ConflictError，实际: %v", err)
	}
	if len(ce.Report.Teacher) != 1 {
		t.Errorf("期望 1 处教师冲突，实际 %d", len(ce.Report.Teacher))
	}
	if len(ce.Report.Room) != 0 || len(ce.Report.Section) != 0 {
		t.Errorf("教室/教学班维度不应有冲突: room=%d section=%d",
			len(ce.Report.Room), len(ce.Report.Section))
	}
	if ce.Report.Teacher[0].TeacherName != "张伟" {
		t.Errorf("冲突记录应携带教师姓名，实际=%s", ce.Report.Teacher[0].TeacherName)
	}
}

func TestTimetableService_Create_OwnSectionRoomExempt(t *testing.T) {
	svc, _ := setupTestTimetableService()

	// sec-d 无任课教师：同教学班同教室重叠只报教学班维度，
	// 教学班在自己教室的重复由教学班维度兜住，教室维度豁免
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-d",
		Day:       model.DayThursday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomNo:    strPtr("R300"),
	})

	_, err := svc.Create(context.Background(), &dto.CreateSlotRequest{
		SectionID: "sec-d",
		Day:       model.DayThursday,
		StartTime: "09:30",
		EndTime:   "10:30",
		RoomNo:    strPtr("R300"),
	})

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("期望 ConflictError，实际: %v", err)
	}
	if len(ce.Report.Section) != 1 {
		t.Errorf("期望 1 处教学班冲突，实际 %d", len(ce.Report.Section))
	}
	if len(ce.Report.Room) != 0 {
		t.Errorf("本教学班占用自己的教室不应报教室冲突，实际 %d 处", len(ce.Report.Room))
	}
}

func TestTimetableService_Create_NilRoomExemptFromRoomCheck(t *testing.T) {
	svc, _ := setupTestTimetableService()

	// 两个教室未定的时段重叠：不同教学班、不同教师、无教室，三个维度均无冲突
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b",
		Day:       model.DayFriday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	_, err := svc.Create(context.Background(), &dto.CreateSlotRequest{
		SectionID: "sec-d",
		Day:       model.DayFriday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if err != nil {
		t.Errorf("教室未定的时段不应参与教室冲突检测: %v", err)
	}
}

func TestTimetableService_Create_Validation(t *testing.T) {
	svc, _ := setupTestTimetableService()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *dto.CreateSlotRequest
		wantErr error
	}{
		{
			"周日不可排课",
			&dto.CreateSlotRequest{SectionID: "sec-a", Day: "Sunday", StartTime: "09:00", EndTime: "10:00"},
			ErrInvalidWeekday,
		},
		{
			"时间格式非法",
			&dto.CreateSlotRequest{SectionID: "sec-a", Day: model.DayMonday, StartTime: "9:00a", EndTime: "10:00"},
			ErrInvalidTimeFormat,
		},
		{
			"开始不早于结束",
			&dto.CreateSlotRequest{SectionID: "sec-a", Day: model.DayMonday, StartTime: "10:00", EndTime: "09:00"},
			ErrInvalidTimeRange,
		},
		{
			"开始等于结束",
			&dto.CreateSlotRequest{SectionID: "sec-a", Day: model.DayMonday, StartTime: "10:00", EndTime: "10:00"},
			ErrInvalidTimeRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}
}

func TestTimetableService_Create_SectionNotFound(t *testing.T) {
	svc, _ := setupTestTimetableService()

	_, err := svc.Create(context.Background(), &dto.CreateSlotRequest{
		SectionID: "sec-missing",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("期望 ErrSectionNotFound，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestTimetableService_Update_ExcludesSelf(t *testing.T) {
	svc, _ := setupTestTimetableService()

	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	// 在自身时间范围内平移：不应与持久化的旧版本误判冲突
	resp, err := svc.Update(context.Background(), created.ID, &dto.UpdateSlotRequest{
		StartTime: strPtr("09:30"),
		EndTime:   strPtr("10:30"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.StartTime != "09:30" || resp.EndTime != "10:30" {
		t.Errorf("更新结果错误: %s-%s", resp.StartTime, resp.EndTime)
	}
}

func TestTimetableService_Update_Conflict(t *testing.T) {
	svc, _ := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomNo:    strPtr("R101"),
	})
	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "11:00",
		EndTime:   "12:00",
		RoomNo:    strPtr("R101"),
	})

	// 移动到与 sec-b 重叠的时间
	_, err := svc.Update(context.Background(), created.ID, &dto.UpdateSlotRequest{
		StartTime: strPtr("09:30"),
		EndTime:   strPtr("10:30"),
	})

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("期望 ConflictError，实际: %v", err)
	}
	if len(ce.Report.Room) != 1 {
		t.Errorf("期望 1 处教室冲突，实际 %d", len(ce.Report.Room))
	}
}

func TestTimetableService_Update_ClearRoom(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	resp, err := svc.Update(context.Background(), created.ID, &dto.UpdateSlotRequest{
		RoomNo: strPtr(""),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.RoomNo != nil {
		t.Errorf("空字符串应清除教室，实际=%v", *resp.RoomNo)
	}
	if stored := mocks.slot.slots[created.ID]; stored.RoomNo != nil {
		t.Error("持久化状态未清除教室")
	}
}

func TestTimetableService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestTimetableService()

	_, err := svc.Update(context.Background(), "slot-missing", &dto.UpdateSlotRequest{
		StartTime: strPtr("09:00"),
	})
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("期望 ErrSlotNotFound，实际: %v", err)
	}
}

func TestTimetableService_Update_ChangeSection(t *testing.T) {
	svc, _ := setupTestTimetableService()

	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomNo:    strPtr("R205"),
	})

	// 迁移到 sec-b：展示字段应重新按新教学班解析
	resp, err := svc.Update(context.Background(), created.ID, &dto.UpdateSlotRequest{
		SectionID: strPtr("sec-b"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.SectionID != "sec-b" {
		t.Errorf("期望教学班=sec-b，实际=%s", resp.SectionID)
	}
	if resp.CourseCode != "MA201" || resp.TeacherName != "李娜" {
		t.Errorf("展示字段未按新教学班解析: %s %s", resp.CourseCode, resp.TeacherName)
	}
}

func TestTimetableService_Update_ChangeSectionTeacherConflict(t *testing.T) {
	svc, _ := setupTestTimetableService()

	// 张伟在周一 09:00-10:00 已有 sec-c 的课
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-c",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	// sec-b 的时段迁移到 sec-a 后任课教师变为张伟，撞上 sec-c
	_, err := svc.Update(context.Background(), created.ID, &dto.UpdateSlotRequest{
		SectionID: strPtr("sec-a"),
	})

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("期望 ConflictError，实际: %v", err)
	}
	if len(ce.Report.Teacher) != 1 {
		t.Errorf("期望 1 处教师冲突，实际 %d", len(ce.Report.Teacher))
	}
}

func TestTimetableService_Update_ChangeSectionNotFound(t *testing.T) {
	svc, _ := setupTestTimetableService()

	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	_, err := svc.Update(context.Background(), created.ID, &dto.UpdateSlotRequest{
		SectionID: strPtr("sec-missing"),
	})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("期望 ErrSectionNotFound，实际: %v", err)
	}
}

// ── Delete / ClearSection 测试 ──

func TestTimetableService_Delete(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := mocks.slot.slots[created.ID]; ok {
		t.Error("时段未被删除")
	}

	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("重复删除期望 ErrSlotNotFound，实际: %v", err)
	}
}

func TestTimetableService_ClearSection(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a", Day: model.DayMonday, StartTime: "09:00", EndTime: "10:00",
	})
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a", Day: model.DayWednesday, StartTime: "09:00", EndTime: "10:00",
	})
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b", Day: model.DayMonday, StartTime: "14:00", EndTime: "15:00",
	})

	count, err := svc.ClearSection(context.Background(), "sec-a")
	if err != nil {
		t.Fatalf("ClearSection 应成功: %v", err)
	}
	if count != 2 {
		t.Errorf("期望删除 2 条，实际 %d", count)
	}
	if len(mocks.slot.slots) != 1 {
		t.Errorf("sec-b 的时段不应被清除，剩余 %d 条", len(mocks.slot.slots))
	}
}

// ── BulkCreate 测试 ──

func TestTimetableService_BulkCreate_PartialSuccess(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	result, err := svc.BulkCreate(context.Background(), &dto.BulkCreateSlotsRequest{
		Slots: []dto.CreateSlotRequest{
			{SectionID: "sec-a", Day: model.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomNo: strPtr("R101")},
			{SectionID: "sec-b", Day: model.DayMonday, StartTime: "09:30", EndTime: "10:30", RoomNo: strPtr("R101")}, // 教室冲突
			{SectionID: "sec-b", Day: model.DayTuesday, StartTime: "09:00", EndTime: "10:00", RoomNo: strPtr("R205")},
		},
	})
	if err != nil {
		t.Fatalf("BulkCreate 应整体成功: %v", err)
	}

	if len(result.Success) != 2 {
		t.Errorf("期望 2 条成功，实际 %d", len(result.Success))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("期望 1 条失败，实际 %d", len(result.Failed))
	}
	if result.Failed[0].Index != 1 {
		t.Errorf("失败项索引应为 1，实际 %d", result.Failed[0].Index)
	}
	if result.Failed[0].Reason == "" {
		t.Error("失败项应携带原因")
	}

	// 部分成功语义：失败不回滚已成功项
	if len(mocks.slot.slots) != 2 {
		t.Errorf("存储中应有 2 条时段，实际 %d", len(mocks.slot.slots))
	}
}

func TestTimetableService_BulkCreate_SequentialWithinBatch(t *testing.T) {
	svc, _ := setupTestTimetableService()

	// 批次内先入项对后续项可见：第二项与第一项冲突
	result, err := svc.BulkCreate(context.Background(), &dto.BulkCreateSlotsRequest{
		Slots: []dto.CreateSlotRequest{
			{SectionID: "sec-a", Day: model.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomNo: strPtr("R500")},
			{SectionID: "sec-b", Day: model.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomNo: strPtr("R500")},
		},
	})
	if err != nil {
		t.Fatalf("BulkCreate 应整体成功: %v", err)
	}
	if len(result.Success) != 1 || len(result.Failed) != 1 {
		t.Errorf("期望 1 成功 1 失败，实际 %d/%d", len(result.Success), len(result.Failed))
	}
}

func TestTimetableService_BulkCreate_SoftErrors(t *testing.T) {
	svc, _ := setupTestTimetableService()

	// 校验错误与教学班缺失都降级为单项失败
	result, err := svc.BulkCreate(context.Background(), &dto.BulkCreateSlotsRequest{
		Slots: []dto.CreateSlotRequest{
			{SectionID: "sec-a", Day: "Sunday", StartTime: "09:00", EndTime: "10:00"},
			{SectionID: "sec-missing", Day: model.DayMonday, StartTime: "09:00", EndTime: "10:00"},
			{SectionID: "sec-a", Day: model.DayMonday, StartTime: "12:00", EndTime: "11:00"},
		},
	})
	if err != nil {
		t.Fatalf("BulkCreate 应整体成功: %v", err)
	}
	if len(result.Success) != 0 || len(result.Failed) != 3 {
		t.Errorf("期望 0 成功 3 失败，实际 %d/%d", len(result.Success), len(result.Failed))
	}
}

// ── 写路径串行化测试 ──

// 写路径必须先锁定学期行再取候选集：只锁候选行挡不住并发插入的新行，
// 两个写者在空白日会互相看不到对方的插入而双双通过检测。
func TestTimetableService_Create_LocksSemesterBeforeCheck(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	if len(mocks.semester.lockedIDs) != 1 || mocks.semester.lockedIDs[0] != "sem-001" {
		t.Errorf("Create 应先对学期 sem-001 加锁，实际锁记录: %v", mocks.semester.lockedIDs)
	}
}

func TestTimetableService_Update_LocksSemesterBeforeCheck(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	mocks.semester.lockedIDs = nil

	if _, err := svc.Update(context.Background(), created.ID, &dto.UpdateSlotRequest{
		StartTime: strPtr("10:00"),
		EndTime:   strPtr("11:00"),
	}); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}

	if len(mocks.semester.lockedIDs) != 1 || mocks.semester.lockedIDs[0] != "sem-001" {
		t.Errorf("Update 应先对学期 sem-001 加锁，实际锁记录: %v", mocks.semester.lockedIDs)
	}
}

func TestTimetableService_BulkCreate_LocksSemesterPerItem(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	_, err := svc.BulkCreate(context.Background(), &dto.BulkCreateSlotsRequest{
		Slots: []dto.CreateSlotRequest{
			{SectionID: "sec-a", Day: model.DayMonday, StartTime: "09:00", EndTime: "10:00"},
			{SectionID: "sec-b", Day: model.DayTuesday, StartTime: "09:00", EndTime: "10:00"},
		},
	})
	if err != nil {
		t.Fatalf("BulkCreate 应成功: %v", err)
	}

	if len(mocks.semester.lockedIDs) != 2 {
		t.Errorf("批量导入每项都应经过学期锁，实际锁记录: %v", mocks.semester.lockedIDs)
	}
}

func TestTimetableService_Check_DoesNotLockSemester(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	if _, err := svc.Check(context.Background(), &dto.CheckSlotRequest{
		CreateSlotRequest: dto.CreateSlotRequest{
			SectionID: "sec-a",
			Day:       model.DayMonday,
			StartTime: "09:00",
			EndTime:   "10:00",
		},
	}); err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}

	if len(mocks.semester.lockedIDs) != 0 {
		t.Errorf("试运行是只读路径，不应加学期锁，实际锁记录: %v", mocks.semester.lockedIDs)
	}
}

// ── Check 测试 ──

func TestTimetableService_Check_DryRun(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomNo:    strPtr("R101"),
	})
	before := len(mocks.slot.slots)

	report, err := svc.Check(context.Background(), &dto.CheckSlotRequest{
		CreateSlotRequest: dto.CreateSlotRequest{
			SectionID: "sec-a",
			Day:       model.DayMonday,
			StartTime: "09:30",
			EndTime:   "10:30",
			RoomNo:    strPtr("R101"),
		},
	})
	if err != nil {
		t.Fatalf("Check 不应以错误返回冲突: %v", err)
	}
	if !report.HasConflicts || len(report.Room) != 1 {
		t.Errorf("期望 1 处教室冲突，实际 room=%d has=%v", len(report.Room), report.HasConflicts)
	}

	// 试运行不落库
	if len(mocks.slot.slots) != before {
		t.Error("Check 不应写入任何时段")
	}
}

func TestTimetableService_Check_NoConflictEmptyReport(t *testing.T) {
	svc, _ := setupTestTimetableService()

	report, err := svc.Check(context.Background(), &dto.CheckSlotRequest{
		CreateSlotRequest: dto.CreateSlotRequest{
			SectionID: "sec-a",
			Day:       model.DayMonday,
			StartTime: "09:00",
			EndTime:   "10:00",
		},
	})
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if report.HasConflicts {
		t.Error("空时间表不应有冲突")
	}
	if report.Room == nil || report.Teacher == nil || report.Section == nil {
		t.Error("三个维度应为空序列而非 nil")
	}
}

func TestTimetableService_Check_WithExcludeSlot(t *testing.T) {
	svc, _ := setupTestTimetableService()

	created := mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a",
		Day:       model.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	// 更新场景预检：排除自身后无冲突
	report, err := svc.Check(context.Background(), &dto.CheckSlotRequest{
		CreateSlotRequest: dto.CreateSlotRequest{
			SectionID: "sec-a",
			Day:       model.DayMonday,
			StartTime: "09:30",
			EndTime:   "10:30",
		},
		ExcludeSlotID: created.ID,
	})
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if report.HasConflicts {
		t.Errorf("排除自身后不应有冲突: %+v", report)
	}
}

// ── GetAllConflicts 测试 ──

func TestTimetableService_GetAllConflicts(t *testing.T) {
	svc, mocks := setupTestTimetableService()

	// 绕过创建路径直接预置脏数据，模拟历史遗留的冲突时间表：
	//   slot-a (sec-a) 与 slot-b (sec-b) 同教室 R101 重叠 → 教室冲突
	//   slot-a (sec-a) 与 slot-c (sec-c) 同教师张伟重叠   → 教师冲突
	mocks.slot.slots["slot-a"] = &model.TimetableSlot{
		SlotID: "slot-a", SectionID: "sec-a",
		Day: model.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomNo: strPtr("R101"),
	}
	mocks.slot.slots["slot-b"] = &model.TimetableSlot{
		SlotID: "slot-b", SectionID: "sec-b",
		Day: model.DayMonday, StartTime: "09:30", EndTime: "10:30", RoomNo: strPtr("R101"),
	}
	mocks.slot.slots["slot-c"] = &model.TimetableSlot{
		SlotID: "slot-c", SectionID: "sec-c",
		Day: model.DayMonday, StartTime: "09:00", EndTime: "09:45", RoomNo: strPtr("R202"),
	}

	result, err := svc.GetAllConflicts(context.Background(), "sem-001")
	if err != nil {
		t.Fatalf("GetAllConflicts 应成功: %v", err)
	}

	if len(result.Room) != 1 {
		t.Errorf("期望 1 对教室冲突，实际 %d", len(result.Room))
	}
	if len(result.Teacher) != 1 {
		t.Errorf("期望 1 对教师冲突，实际 %d", len(result.Teacher))
	}
	if result.Total != 2 {
		t.Errorf("期望 Total=2，实际 %d", result.Total)
	}

	if len(result.Room) == 1 {
		pair := result.Room[0]
		if pair.RoomNo == nil || *pair.RoomNo != "R101" {
			t.Errorf("教室冲突对应携带教室号 R101，实际=%v", pair.RoomNo)
		}
	}
	if len(result.Teacher) == 1 && result.Teacher[0].TeacherName != "张伟" {
		t.Errorf("教师冲突对应携带教师姓名，实际=%s", result.Teacher[0].TeacherName)
	}
}

func TestTimetableService_GetAllConflicts_FallbackToActiveSemester(t *testing.T) {
	svc, _ := setupTestTimetableService()

	// semesterID 为空回退当前激活学期
	result, err := svc.GetAllConflicts(context.Background(), "")
	if err != nil {
		t.Fatalf("应回退到激活学期: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("空时间表 Total 应为 0，实际 %d", result.Total)
	}
}

func TestTimetableService_GetAllConflicts_NoActiveSemester(t *testing.T) {
	repo, mocks := newMockRepository()
	seedTimetableFixture(mocks)
	mocks.semester.semesters["sem-001"].IsActive = false
	svc := NewTimetableService(repo, zap.NewNop())

	_, err := svc.GetAllConflicts(context.Background(), "")
	if !errors.Is(err, ErrNoActiveSemester) {
		t.Errorf("期望 ErrNoActiveSemester，实际: %v", err)
	}
}

// ── List 测试 ──

func TestTimetableService_List_Filters(t *testing.T) {
	svc, _ := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a", Day: model.DayMonday, StartTime: "09:00", EndTime: "10:00",
	})
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b", Day: model.DayTuesday, StartTime: "09:00", EndTime: "10:00",
	})
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-c", Day: model.DayMonday, StartTime: "14:00", EndTime: "15:00",
	})

	all, err := svc.List(context.Background(), &dto.SlotListRequest{SemesterID: "sem-001"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("期望 3 条，实际 %d", len(all))
	}

	byDay, _ := svc.List(context.Background(), &dto.SlotListRequest{Day: model.DayMonday})
	if len(byDay) != 2 {
		t.Errorf("按星期过滤期望 2 条，实际 %d", len(byDay))
	}

	byTeacher, _ := svc.List(context.Background(), &dto.SlotListRequest{TeacherID: "teacher-001"})
	if len(byTeacher) != 2 {
		t.Errorf("按教师过滤期望 2 条（sec-a, sec-c），实际 %d", len(byTeacher))
	}
}

// mock 层排序行为与真实仓储的 CASE 排序保持一致
func TestTimetableService_List_Ordering(t *testing.T) {
	svc, _ := setupTestTimetableService()

	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-b", Day: model.DayWednesday, StartTime: "09:00", EndTime: "10:00",
	})
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-a", Day: model.DayMonday, StartTime: "14:00", EndTime: "15:00",
	})
	mustCreateSlot(t, svc, &dto.CreateSlotRequest{
		SectionID: "sec-c", Day: model.DayMonday, StartTime: "08:00", EndTime: "09:00",
	})

	result, err := svc.List(context.Background(), &dto.SlotListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("期望 3 条，实际 %d", len(result))
	}
	if result[0].StartTime != "08:00" || result[1].StartTime != "14:00" || result[2].Day != model.DayWednesday {
		t.Errorf("排序错误: %+v", result)
	}
}
