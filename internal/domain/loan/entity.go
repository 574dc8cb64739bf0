package loan

import (
	"time"

	"github.com/xiebiao/library/pkg/clock"
)

// Status 借阅记录状态
type Status string

const (
	StatusActive   Status = "active"   // 借阅中
	StatusReturned Status = "returned" // 已归还(终态)
)

// String 实现Stringer接口
func (s Status) String() string {
	return string(s)
}

// Valid 是否为已定义的状态
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusReturned
}

// Record 借阅记录实体
// DDD设计说明:
// 1. 同一(会员,图书)同一时刻最多一条active记录
// 2. 状态只能 active → returned 变化一次,归还后不可再修改
// 3. 记录永不删除
// 4. 日期均为日历日(无时分秒)
type Record struct {
	ID         uint
	MemberID   uint
	BookID     uint
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time // 借阅中为nil
	Status     Status
}

// NewRecord 创建借阅记录(工厂方法)
// 应还日期 = 借出日期 + loanDays
func NewRecord(memberID, bookID uint, borrowDate time.Time, loanDays int) *Record {
	borrowed := clock.DateOf(borrowDate)
	return &Record{
		MemberID:   memberID,
		BookID:     bookID,
		BorrowDate: borrowed,
		DueDate:    clock.AddDays(borrowed, loanDays),
		Status:     StatusActive,
	}
}

// IsActive 是否借阅中
func (r *Record) IsActive() bool {
	return r.Status == StatusActive
}

// Close 归还(领域行为)
// 业务规则:已归还的记录不可再次修改
func (r *Record) Close(returnDate time.Time) error {
	if !r.IsActive() {
		return ErrRecordClosed.WithField("record_id", r.ID)
	}
	d := clock.DateOf(returnDate)
	r.ReturnDate = &d
	r.Status = StatusReturned
	return nil
}

// Assessment 逾期评估结果
type Assessment struct {
	IsLate   bool
	DaysLate int
	Fine     int64
}

// Assess 计算逾期天数与罚金
// 业务规则:
// - 归还日期严格晚于应还日期才算逾期(当天归还不算)
// - 逾期天数按整天计算
// - 罚金 = 逾期天数 × 每日罚金
func (r *Record) Assess(returnDate time.Time, finePerDay int64) Assessment {
	days := clock.DaysBetween(r.DueDate, returnDate)
	if days <= 0 {
		return Assessment{}
	}
	return Assessment{
		IsLate:   true,
		DaysLate: days,
		Fine:     int64(days) * finePerDay,
	}
}

// Clone 防御性复制
func (r *Record) Clone() *Record {
	c := *r
	if r.ReturnDate != nil {
		d := *r.ReturnDate
		c.ReturnDate = &d
	}
	return &c
}
