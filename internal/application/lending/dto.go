package lending

import (
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/clock"
)

// RecordResponse 借阅记录DTO(日期格式 2006-01-02)
type RecordResponse struct {
	ID         uint    `json:"id"`
	MemberID   uint    `json:"memberId"`
	BookID     uint    `json:"bookId"`
	BorrowDate string  `json:"borrowDate"`
	DueDate    string  `json:"dueDate"`
	ReturnDate *string `json:"returnDate"` // 借阅中为null
	Status     string  `json:"status"`
}

// BookSummary 图书快照
type BookSummary struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// MemberSummary 会员快照
type MemberSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BorrowBookResponse 借书响应
type BorrowBookResponse struct {
	Record  *RecordResponse `json:"record"`
	Book    BookSummary     `json:"book"`
	Member  MemberSummary   `json:"member"`
	DueDate string          `json:"dueDate"`
}

// ReturnBookResponse 还书响应
type ReturnBookResponse struct {
	Record   *RecordResponse `json:"record"`
	Book     BookSummary     `json:"book"`
	Member   MemberSummary   `json:"member"`
	IsLate   bool            `json:"isLate"`
	DaysLate int             `json:"daysLate"`
	Fine     int64           `json:"fine"`
}

// LoanItem 借阅列表项(附带会员姓名、书名)
type LoanItem struct {
	RecordResponse
	MemberName string `json:"memberName"`
	BookTitle  string `json:"bookTitle"`
}

// NewRecordResponse 领域实体 → DTO
func NewRecordResponse(r *loan.Record) *RecordResponse {
	resp := &RecordResponse{
		ID:         r.ID,
		MemberID:   r.MemberID,
		BookID:     r.BookID,
		BorrowDate: clock.FormatDate(r.BorrowDate),
		DueDate:    clock.FormatDate(r.DueDate),
		Status:     r.Status.String(),
	}
	if r.ReturnDate != nil {
		d := clock.FormatDate(*r.ReturnDate)
		resp.ReturnDate = &d
	}
	return resp
}

func newBorrowBookResponse(res *lending.BorrowResult) *BorrowBookResponse {
	return &BorrowBookResponse{
		Record:  NewRecordResponse(res.Record),
		Book:    BookSummary{Title: res.Book.Title, Author: res.Book.Author},
		Member:  MemberSummary{Name: res.Member.Name, Email: res.Member.Email},
		DueDate: clock.FormatDate(res.DueDate),
	}
}

func newReturnBookResponse(res *lending.ReturnResult) *ReturnBookResponse {
	return &ReturnBookResponse{
		Record:   NewRecordResponse(res.Record),
		Book:     BookSummary{Title: res.Book.Title, Author: res.Book.Author},
		Member:   MemberSummary{Name: res.Member.Name, Email: res.Member.Email},
		IsLate:   res.IsLate,
		DaysLate: res.DaysLate,
		Fine:     res.Fine,
	}
}
