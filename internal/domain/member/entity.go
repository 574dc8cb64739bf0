package member

import (
	"strings"
	"time"
)

// Member 会员实体(聚合根)
// DDD设计说明:
// 1. Email统一存储为小写,唯一性按不区分大小写判断
// 2. BorrowedBooks是当前在借图书ID集合(无重复)
// 3. 不变量:bookID在BorrowedBooks中 <=> 存在该(会员,图书)的进行中借阅记录
// 4. BorrowedBooks只能通过Borrow/Return变化(由借阅引擎调用)
type Member struct {
	ID             uint
	Name           string
	Email          string    // 小写
	Phone          string    // 10位数字
	MembershipDate time.Time // 入会日期(日历日)
	BorrowedBooks  []uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewMember 创建新会员(工厂方法)
func NewMember(name, email, phone string, membershipDate, now time.Time) *Member {
	return &Member{
		Name:           strings.TrimSpace(name),
		Email:          NormalizeEmail(email),
		Phone:          strings.TrimSpace(phone),
		MembershipDate: membershipDate,
		BorrowedBooks:  []uint{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NormalizeEmail 去空格并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasBorrowed 是否正在借阅该书
func (m *Member) HasBorrowed(bookID uint) bool {
	for _, id := range m.BorrowedBooks {
		if id == bookID {
			return true
		}
	}
	return false
}

// HasLoans 是否有未归还的图书
func (m *Member) HasLoans() bool {
	return len(m.BorrowedBooks) > 0
}

// Borrow 记录借出(领域行为)
// 业务规则:同一本书不能重复借阅
func (m *Member) Borrow(bookID uint, now time.Time) error {
	if m.HasBorrowed(bookID) {
		return ErrAlreadyBorrowed.WithField("member_id", m.ID).WithField("book_id", bookID)
	}
	m.BorrowedBooks = append(m.BorrowedBooks, bookID)
	m.UpdatedAt = now
	return nil
}

// Return 记录归还(领域行为)
func (m *Member) Return(bookID uint, now time.Time) error {
	for i, id := range m.BorrowedBooks {
		if id == bookID {
			m.BorrowedBooks = append(m.BorrowedBooks[:i:i], m.BorrowedBooks[i+1:]...)
			m.UpdatedAt = now
			return nil
		}
	}
	return ErrNotBorrowing.WithField("member_id", m.ID).WithField("book_id", bookID)
}

// Clone 防御性复制
func (m *Member) Clone() *Member {
	c := *m
	c.BorrowedBooks = append([]uint{}, m.BorrowedBooks...)
	return &c
}
