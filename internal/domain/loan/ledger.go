package loan

import (
	"context"
	"time"
)

// Ledger 借阅台账(领域服务)
// 说明:只有借阅引擎调用RecordBorrow/RecordReturn,调用方负责事务
type Ledger interface {
	// RecordBorrow 新建进行中的借阅记录
	RecordBorrow(ctx context.Context, memberID, bookID uint, borrowDate time.Time) (*Record, error)

	// RecordReturn 关闭(会员,图书)的进行中记录,没有则返回ErrRecordNotFound
	RecordReturn(ctx context.Context, memberID, bookID uint, returnDate time.Time) (*Record, error)

	// Reopen 撤销一次归还(仅用于补偿失败的归还流程)
	Reopen(ctx context.Context, record *Record) error

	// Revoke 撤销一次借出(仅用于补偿失败的借出流程)
	Revoke(ctx context.Context, record *Record) error

	// FindActive 查找进行中的记录
	FindActive(ctx context.Context, memberID, bookID uint) (*Record, error)

	// List 查询记录
	List(ctx context.Context, params ListParams) ([]*Record, error)

	// ListByMember 查询会员的全部记录(含已归还)
	ListByMember(ctx context.Context, memberID uint) ([]*Record, error)
}

type ledger struct {
	repo     Repository
	loanDays int
}

// NewLedger 创建借阅台账,loanDays为借期天数
func NewLedger(repo Repository, loanDays int) Ledger {
	return &ledger{repo: repo, loanDays: loanDays}
}

// RecordBorrow 新建借阅记录
func (l *ledger) RecordBorrow(ctx context.Context, memberID, bookID uint, borrowDate time.Time) (*Record, error) {
	r := NewRecord(memberID, bookID, borrowDate, l.loanDays)
	if err := l.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// RecordReturn 关闭借阅记录
func (l *ledger) RecordReturn(ctx context.Context, memberID, bookID uint, returnDate time.Time) (*Record, error) {
	r, err := l.repo.FindActive(ctx, memberID, bookID)
	if err != nil {
		return nil, err
	}
	if err := r.Close(returnDate); err != nil {
		return nil, err
	}
	if err := l.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Reopen 恢复为借阅中
func (l *ledger) Reopen(ctx context.Context, record *Record) error {
	r := record.Clone()
	r.Status = StatusActive
	r.ReturnDate = nil
	return l.repo.Update(ctx, r)
}

// Revoke 删除尚未生效的借阅记录
// 只在同一临界区内撤销刚创建的记录,已生效的记录永不删除
func (l *ledger) Revoke(ctx context.Context, record *Record) error {
	return l.repo.Delete(ctx, record.ID)
}

// FindActive 查找进行中的记录
func (l *ledger) FindActive(ctx context.Context, memberID, bookID uint) (*Record, error) {
	return l.repo.FindActive(ctx, memberID, bookID)
}

// List 查询记录
func (l *ledger) List(ctx context.Context, params ListParams) ([]*Record, error) {
	return l.repo.List(ctx, params)
}

// ListByMember 查询会员的全部记录
func (l *ledger) ListByMember(ctx context.Context, memberID uint) ([]*Record, error) {
	return l.repo.List(ctx, ListParams{MemberID: memberID})
}
