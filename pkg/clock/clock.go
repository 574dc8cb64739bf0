// Package clock 提供可注入的日期来源
//
// 借阅业务只关心日历日:所有日期都归一到UTC零点,不带时分秒,
// 两个日期相减总是24小时的整数倍。
package clock

import (
	"sync"
	"time"
)

// DateLayout 日期格式(YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Clock 当前时间来源
type Clock interface {
	Now() time.Time
}

// System 系统时钟
type System struct{}

// Now 返回当前时间
func (System) Now() time.Time { return time.Now() }

// Fixed 固定时钟(测试用),可通过Set/Advance调整
type Fixed struct {
	mu sync.RWMutex
	t  time.Time
}

// NewFixed 创建固定时钟
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

// Now 返回设定的时间
func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.t
}

// Set 设置时间
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

// AdvanceDays 前进n天
func (f *Fixed) AdvanceDays(n int) {
	f.mu.Lock()
	f.t = f.t.AddDate(0, 0, n)
	f.mu.Unlock()
}

// Today 返回c所在的日历日
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf 截断到日历日(按t自身时区取年月日,结果为UTC零点)
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date 构造日历日
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays 日期加n天
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// DaysBetween 返回to-from的整天数(向下取整)
func DaysBetween(from, to time.Time) int {
	diff := DateOf(to).Sub(DateOf(from))
	days := int(diff / (24 * time.Hour))
	if diff < 0 && diff%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// FormatDate 格式化为YYYY-MM-DD,零值返回空串
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate 解析YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}
