package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/pkg/clock"
)

// 事件类型(同时用作消息路由键)
const (
	EventBorrowed = "loan.borrowed"
	EventReturned = "loan.returned"
)

// Event 借阅领域事件
// 事务提交后发布,发布失败不影响借还结果
type Event struct {
	Type       string    `json:"type"`
	RecordID   uint      `json:"recordId"`
	MemberID   uint      `json:"memberId"`
	BookID     uint      `json:"bookId"`
	BorrowDate string    `json:"borrowDate"`
	DueDate    string    `json:"dueDate"`
	ReturnDate string    `json:"returnDate,omitempty"`
	IsLate     bool      `json:"isLate"`
	DaysLate   int       `json:"daysLate"`
	Fine       int64     `json:"fine"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher 事件发布接口(由infrastructure层实现)
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NewBorrowedEvent 借出事件
func NewBorrowedEvent(r *Record, at time.Time) Event {
	return Event{
		Type:       EventBorrowed,
		RecordID:   r.ID,
		MemberID:   r.MemberID,
		BookID:     r.BookID,
		BorrowDate: clock.FormatDate(r.BorrowDate),
		DueDate:    clock.FormatDate(r.DueDate),
		OccurredAt: at,
	}
}

// NewReturnedEvent 归还事件
func NewReturnedEvent(r *Record, a Assessment, at time.Time) Event {
	e := Event{
		Type:       EventReturned,
		RecordID:   r.ID,
		MemberID:   r.MemberID,
		BookID:     r.BookID,
		BorrowDate: clock.FormatDate(r.BorrowDate),
		DueDate:    clock.FormatDate(r.DueDate),
		IsLate:     a.IsLate,
		DaysLate:   a.DaysLate,
		Fine:       a.Fine,
		OccurredAt: at,
	}
	if r.ReturnDate != nil {
		e.ReturnDate = clock.FormatDate(*r.ReturnDate)
	}
	return e
}
