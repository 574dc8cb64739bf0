package memory

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/pkg/clock"
)

// Store 三个内存仓储的组合
type Store struct {
	Books   book.Repository
	Members member.Repository
	Loans   loan.Repository
}

// Seed 写入演示数据
// 可借数量按进行中借阅记录推算,保证 available = copies - 在借数量
// 创建/更新时间取自clk
func Seed(ctx context.Context, s Store, clk clock.Clock, loanDays int) error {
	now := clk.Now()

	books := []*book.Book{
		{ID: 1, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "978-0-7432-7356-5", Category: "Fiction", PublishYear: 1925, Copies: 5},
		{ID: 2, Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "978-0-06-112008-4", Category: "Fiction", PublishYear: 1960, Copies: 4},
		{ID: 3, Title: "1984", Author: "George Orwell", ISBN: "978-0-452-28423-4", Category: "Dystopian", PublishYear: 1949, Copies: 6},
	}
	members := []*member.Member{
		{ID: 1, Name: "John Doe", Email: "john.doe@email.com", Phone: "1234567890", MembershipDate: clock.Date(2024, time.January, 15)},
		{ID: 2, Name: "Jane Smith", Email: "jane.smith@email.com", Phone: "9876543210", MembershipDate: clock.Date(2024, time.February, 20)},
	}
	records := []*loan.Record{
		loan.NewRecord(1, 1, clock.Date(2024, time.October, 1), loanDays),
	}
	records[0].ID = 1

	onLoan := make(map[uint]int)
	borrowed := make(map[uint][]uint)
	for _, r := range records {
		if r.IsActive() {
			onLoan[r.BookID]++
			borrowed[r.MemberID] = append(borrowed[r.MemberID], r.BookID)
		}
	}

	for _, b := range books {
		b.AvailableCopies = b.Copies - onLoan[b.ID]
		b.CreatedAt, b.UpdatedAt = now, now
		if err := s.Books.Create(ctx, b); err != nil {
			return err
		}
	}
	for _, m := range members {
		m.BorrowedBooks = append([]uint{}, borrowed[m.ID]...)
		m.CreatedAt, m.UpdatedAt = now, now
		if err := s.Members.Create(ctx, m); err != nil {
			return err
		}
	}
	for _, r := range records {
		if err := s.Loans.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
