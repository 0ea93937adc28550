// Package workcal 工作日日历：星期可用掩码 + 节假日集合，提供按工作日加减的日期运算。
//
// 日期统一按"日历日"处理：入参会被截断为 UTC 零点，时区与时分秒不参与比较。
package workcal

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout 日期字符串格式
const DateLayout = "2006-01-02"

// ErrNoWorkingDays 星期掩码中没有任何工作日，工作日运算无法终止
var ErrNoWorkingDays = errors.New("工作日掩码中至少需要一天可用")

// Mask 星期可用掩码，下标 0 = 周日 … 6 = 周六
type Mask [7]bool

// MondayToFriday 默认掩码：周一至周五
var MondayToFriday = Mask{false, true, true, true, true, true, false}

// HasWorkingDay 掩码中是否至少有一个工作日
func (m Mask) HasWorkingDay() bool {
	for _, ok := range m {
		if ok {
			return true
		}
	}
	return false
}

// MaskFromInts 将 7 元素 0/1 数组（数据库中的存储形式）转为 Mask
func MaskFromInts(days []int) (Mask, error) {
	var m Mask
	if len(days) != 7 {
		return m, fmt.Errorf("工作日掩码长度应为 7，实际为 %d", len(days))
	}
	for i, v := range days {
		switch v {
		case 0:
		case 1:
			m[i] = true
		default:
			return m, fmt.Errorf("工作日掩码第 %d 位取值无效: %d", i, v)
		}
	}
	return m, nil
}

// Ints 转为 7 元素 0/1 数组
func (m Mask) Ints() []int {
	out := make([]int, 7)
	for i, ok := range m {
		if ok {
			out[i] = 1
		}
	}
	return out
}

// Calendar 一次计算中使用的不可变工作日日历
type Calendar struct {
	mask     Mask
	holidays map[string]struct{}
}

// New 创建日历；掩码全为 false 时返回 ErrNoWorkingDays
func New(mask Mask, holidays []time.Time) (Calendar, error) {
	if !mask.HasWorkingDay() {
		return Calendar{}, ErrNoWorkingDays
	}
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[Date(h).Format(DateLayout)] = struct{}{}
	}
	return Calendar{mask: mask, holidays: set}, nil
}

// Mask 返回日历的星期掩码
func (c Calendar) Mask() Mask { return c.mask }

// HolidayCount 节假日数量
func (c Calendar) HolidayCount() int { return len(c.holidays) }

// IsHoliday 指定日期是否为节假日
func (c Calendar) IsHoliday(d time.Time) bool {
	_, ok := c.holidays[Date(d).Format(DateLayout)]
	return ok
}

// IsWorkingDay 星期掩码允许且不在节假日集合中
func (c Calendar) IsWorkingDay(d time.Time) bool {
	d = Date(d)
	return c.mask[int(d.Weekday())] && !c.IsHoliday(d)
}

// AddWorkingDays 按 sign(n) 逐日推进，仅工作日计数，走满 |n| 个工作日后返回。
// n = 0 时原样返回（不做工作日对齐）。
func (c Calendar) AddWorkingDays(d time.Time, n int) time.Time {
	d = Date(d)
	if n == 0 {
		return d
	}
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for counted := 0; counted < n; {
		d = d.AddDate(0, 0, step)
		if c.IsWorkingDay(d) {
			counted++
		}
	}
	return d
}

// SubtractWorkingDays 等价于 AddWorkingDays(d, -n)
func (c Calendar) SubtractWorkingDays(d time.Time, n int) time.Time {
	return c.AddWorkingDays(d, -n)
}

// Date 截断为 UTC 零点的日历日
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式无效 %q: %w", s, err)
	}
	return t, nil
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween 两个日历日之间的自然日差（to - from）
// 按 Unix 秒计算，跨度超过 time.Duration 上限（约 292 年）时仍然准确
func DaysBetween(from, to time.Time) int {
	return int((Date(to).Unix() - Date(from).Unix()) / secondsPerDay)
}
