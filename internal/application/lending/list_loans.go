package lending

import (
	"context"
	"errors"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// unknownName 记录引用的会员或图书已被删除
const unknownName = "Unknown"

// ListLoansUseCase 借阅记录查询用例
// 设计说明:
// 1. 只读,不进入借还临界区
// 2. 每条记录附带会员姓名和书名,引用已删除时为"Unknown"
type ListLoansUseCase struct {
	ledger  loan.Ledger
	members member.Service
	books   book.Service
}

// NewListLoansUseCase 创建借阅记录查询用例
func NewListLoansUseCase(ledger loan.Ledger, members member.Service, books book.Service) *ListLoansUseCase {
	return &ListLoansUseCase{ledger: ledger, members: members, books: books}
}

// ListLoansRequest 查询条件(零值表示不过滤)
type ListLoansRequest struct {
	MemberID      uint
	BookID        uint
	Status        string // active | returned
	RequireMember bool   // 会员不存在时返回NotFound(按会员查询借阅历史)
}

// Execute 执行查询(按记录ID升序)
func (uc *ListLoansUseCase) Execute(ctx context.Context, req ListLoansRequest) ([]*LoanItem, error) {
	status := loan.Status(req.Status)
	if status != "" && !status.Valid() {
		return nil, apperrors.ErrInvalidParams.WithMessage("status必须为active或returned").WithField("status", req.Status)
	}

	if req.RequireMember {
		if _, err := uc.members.GetMember(ctx, req.MemberID); err != nil {
			return nil, err
		}
	}

	records, err := uc.ledger.List(ctx, loan.ListParams{
		MemberID: req.MemberID,
		BookID:   req.BookID,
		Status:   status,
	})
	if err != nil {
		return nil, err
	}

	memberNames := make(map[uint]string)
	bookTitles := make(map[uint]string)
	items := make([]*LoanItem, len(records))
	for i, r := range records {
		memberName, err := uc.memberName(ctx, memberNames, r.MemberID)
		if err != nil {
			return nil, err
		}
		bookTitle, err := uc.bookTitle(ctx, bookTitles, r.BookID)
		if err != nil {
			return nil, err
		}
		items[i] = &LoanItem{
			RecordResponse: *NewRecordResponse(r),
			MemberName:     memberName,
			BookTitle:      bookTitle,
		}
	}
	return items, nil
}

func (uc *ListLoansUseCase) memberName(ctx context.Context, seen map[uint]string, id uint) (string, error) {
	if name, ok := seen[id]; ok {
		return name, nil
	}
	name := unknownName
	m, err := uc.members.GetMember(ctx, id)
	switch {
	case err == nil:
		name = m.Name
	case !errors.Is(err, member.ErrMemberNotFound):
		return "", err
	}
	seen[id] = name
	return name, nil
}

func (uc *ListLoansUseCase) bookTitle(ctx context.Context, seen map[uint]string, id uint) (string, error) {
	if title, ok := seen[id]; ok {
		return title, nil
	}
	title := unknownName
	b, err := uc.books.GetBook(ctx, id)
	switch {
	case err == nil:
		title = b.Title
	case !errors.Is(err, book.ErrBookNotFound):
		return "", err
	}
	seen[id] = title
	return title, nil
}
