package lending

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/saga"
	"github.com/xiebiao/library/pkg/tracing"
)

const tracerName = "library/lending"

// Policy 借阅规则
type Policy struct {
	LoanPeriodDays int   // 借期(天)
	FinePerDay     int64 // 每逾期一天的罚金
}

// DefaultPolicy 默认借阅规则:借期14天,每天罚金5
func DefaultPolicy() Policy {
	return Policy{LoanPeriodDays: 14, FinePerDay: 5}
}

// BookSummary 图书快照(借还时刻的书名、作者)
type BookSummary struct {
	Title  string
	Author string
}

// MemberSummary 会员快照(借还时刻的姓名、邮箱)
type MemberSummary struct {
	Name  string
	Email string
}

// BorrowResult 借书结果
type BorrowResult struct {
	Record  *loan.Record
	Book    BookSummary
	Member  MemberSummary
	DueDate time.Time
}

// ReturnResult 还书结果
type ReturnResult struct {
	Record *loan.Record
	Book   BookSummary
	Member MemberSummary
	loan.Assessment
}

// Engine 借阅引擎
//
// 唯一允许修改 Book.AvailableCopies、Member.BorrowedBooks、借阅记录状态 的组件。
// 每次借还在一个临界区(TxManager)内完成:先做全部检查,再一次性写入三个存储;
// 任何一步写入失败都会补偿已完成的写入,调用方看不到部分修改。
type Engine struct {
	books     book.Repository
	members   member.Repository
	ledger    loan.Ledger
	txManager shared.TxManager
	clock     clock.Clock
	policy    Policy
	logger    *zap.Logger
}

// NewEngine 创建借阅引擎
func NewEngine(
	books book.Repository,
	members member.Repository,
	ledger loan.Ledger,
	txManager shared.TxManager,
	clk clock.Clock,
	policy Policy,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		books:     books,
		members:   members,
		ledger:    ledger,
		txManager: txManager,
		clock:     clk,
		policy:    policy,
		logger:    logger.Named("lending"),
	}
}

// Policy 当前借阅规则
func (e *Engine) Policy() Policy {
	return e.policy
}

// Borrow 借书
//
// 流程:
//  1. 查询会员和图书(不存在 → NotFound)
//  2. 无可借副本 → Unavailable
//  3. 会员已借该书 → Conflict
//  4. 创建借阅记录、扣减可借数量、加入会员借阅集合
func (e *Engine) Borrow(ctx context.Context, memberID, bookID uint) (*BorrowResult, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "lending.Borrow")
	defer span.End()
	span.SetAttributes(attribute.Int64("member.id", int64(memberID)), attribute.Int64("book.id", int64(bookID)))

	var result *BorrowResult
	err := e.txManager.Transaction(ctx, func(ctx context.Context) error {
		// 1. 查询会员和图书(固定先会员后图书的加锁顺序)
		m, err := e.members.LockByID(ctx, memberID)
		if err != nil {
			return err
		}
		b, err := e.books.LockByID(ctx, bookID)
		if err != nil {
			return err
		}

		// 2. 可借数量检查
		if !b.IsAvailable() {
			return book.ErrNoCopyAvailable.WithField("book_id", bookID)
		}

		// 3. 重复借阅检查
		if m.HasBorrowed(bookID) {
			return member.ErrAlreadyBorrowed.WithField("member_id", memberID).WithField("book_id", bookID)
		}
		if active, err := e.findActive(ctx, memberID, bookID); err != nil {
			return err
		} else if active != nil {
			return apperrors.Invariant("member %d has active record %d for book %d but book is not in borrowed set",
				memberID, active.ID, bookID)
		}

		// 4. 在副本上计算新状态,全部成功后再写入
		now := e.clock.Now()
		today := clock.DateOf(now)
		bookBefore, memberBefore := b.Clone(), m.Clone()
		if err := b.CheckOut(now); err != nil {
			return err
		}
		if err := m.Borrow(bookID, now); err != nil {
			return err
		}

		var record *loan.Record
		s := saga.NewSaga(0)
		s.AddStep("创建借阅记录",
			func(ctx context.Context) error {
				record, err = e.ledger.RecordBorrow(ctx, memberID, bookID, today)
				return err
			},
			func(ctx context.Context) error {
				return e.ledger.Revoke(ctx, record)
			},
		)
		s.AddStep("扣减可借数量",
			func(ctx context.Context) error { return e.books.Update(ctx, b) },
			func(ctx context.Context) error { return e.books.Update(ctx, bookBefore) },
		)
		s.AddStep("加入会员借阅集合",
			func(ctx context.Context) error { return e.members.Update(ctx, m) },
			func(ctx context.Context) error { return e.members.Update(ctx, memberBefore) },
		)
		if err := runSaga(ctx, s); err != nil {
			return e.mutationFailed("borrow", err)
		}

		result = &BorrowResult{
			Record:  record.Clone(),
			Book:    BookSummary{Title: b.Title, Author: b.Author},
			Member:  MemberSummary{Name: m.Name, Email: m.Email},
			DueDate: record.DueDate,
		}
		return nil
	})
	if err != nil {
		e.fail(span, "borrow", memberID, bookID, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("loan.id", int64(result.Record.ID)))
	return result, nil
}

// Return 还书
//
// 流程:
//  1. 查询会员和图书(不存在 → NotFound)
//  2. 查找进行中的借阅记录(没有 → Conflict)
//  3. 关闭记录、增加可借数量、移出会员借阅集合
//  4. 计算逾期天数与罚金
func (e *Engine) Return(ctx context.Context, memberID, bookID uint) (*ReturnResult, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "lending.Return")
	defer span.End()
	span.SetAttributes(attribute.Int64("member.id", int64(memberID)), attribute.Int64("book.id", int64(bookID)))

	var result *ReturnResult
	err := e.txManager.Transaction(ctx, func(ctx context.Context) error {
		// 1. 查询会员和图书
		m, err := e.members.LockByID(ctx, memberID)
		if err != nil {
			return err
		}
		b, err := e.books.LockByID(ctx, bookID)
		if err != nil {
			return err
		}

		// 2. 查找进行中的记录
		active, err := e.findActive(ctx, memberID, bookID)
		if err != nil {
			return err
		}
		if active == nil {
			if m.HasBorrowed(bookID) {
				return apperrors.Invariant("book %d is in borrowed set of member %d without an active record", bookID, memberID)
			}
			return loan.ErrNoActiveLoan.WithField("member_id", memberID).WithField("book_id", bookID)
		}

		// 3. 在副本上计算新状态
		now := e.clock.Now()
		today := clock.DateOf(now)
		bookBefore, memberBefore := b.Clone(), m.Clone()
		if err := b.CheckIn(now); err != nil {
			return err
		}
		if err := m.Return(bookID, now); err != nil {
			return apperrors.Invariant("member %d has active record %d for book %d but book is not in borrowed set",
				memberID, active.ID, bookID)
		}

		var record *loan.Record
		s := saga.NewSaga(0)
		s.AddStep("关闭借阅记录",
			func(ctx context.Context) error {
				record, err = e.ledger.RecordReturn(ctx, memberID, bookID, today)
				return err
			},
			func(ctx context.Context) error {
				return e.ledger.Reopen(ctx, record)
			},
		)
		s.AddStep("增加可借数量",
			func(ctx context.Context) error { return e.books.Update(ctx, b) },
			func(ctx context.Context) error { return e.books.Update(ctx, bookBefore) },
		)
		s.AddStep("移出会员借阅集合",
			func(ctx context.Context) error { return e.members.Update(ctx, m) },
			func(ctx context.Context) error { return e.members.Update(ctx, memberBefore) },
		)
		if err := runSaga(ctx, s); err != nil {
			return e.mutationFailed("return", err)
		}

		// 4. 逾期评估
		result = &ReturnResult{
			Record:     record.Clone(),
			Book:       BookSummary{Title: b.Title, Author: b.Author},
			Member:     MemberSummary{Name: m.Name, Email: m.Email},
			Assessment: record.Assess(today, e.policy.FinePerDay),
		}
		return nil
	})
	if err != nil {
		e.fail(span, "return", memberID, bookID, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("loan.id", int64(result.Record.ID)),
		attribute.Bool("loan.late", result.IsLate),
	)
	return result, nil
}

// findActive 查找进行中的记录,不存在返回nil
func (e *Engine) findActive(ctx context.Context, memberID, bookID uint) (*loan.Record, error) {
	r, err := e.ledger.FindActive(ctx, memberID, bookID)
	if err != nil {
		if errors.Is(err, loan.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

// runSaga 执行写入步骤并记录指标
func runSaga(ctx context.Context, s *saga.Saga) error {
	start := time.Now()
	err := s.Execute(ctx)

	result := "success"
	var stepErr *saga.StepError
	if errors.As(err, &stepErr) {
		result = "compensated"
		if !stepErr.Compensated() {
			result = "compensation_failed"
		}
	}
	metrics.RecordSaga(result, time.Since(start))
	return err
}

// mutationFailed 写入阶段失败
// 补偿成功时返回原始错误(存储层故障);补偿失败说明三个存储已不一致
func (e *Engine) mutationFailed(op string, err error) error {
	var stepErr *saga.StepError
	if !errors.As(err, &stepErr) {
		return err
	}
	if !stepErr.Compensated() {
		return apperrors.Invariant("%s: %s failed and compensation failed: %v", op, stepErr.Step, stepErr.CompensateErr)
	}
	if apperrors.IsAppError(stepErr.Err) {
		return stepErr.Err
	}
	return apperrors.Wrapf(stepErr.Err, "%s失败", op)
}

// fail 记录失败(不变量破坏单独告警)
func (e *Engine) fail(span trace.Span, op string, memberID, bookID uint, err error) {
	kind := apperrors.KindOf(err)
	span.SetAttributes(attribute.String("error.kind", string(kind)))
	span.RecordError(err)
	metrics.RecordLendingFailure(op, string(kind))

	switch kind {
	case apperrors.KindInvariant:
		span.SetStatus(codes.Error, "invariant violation")
		metrics.RecordInvariantViolation(op)
		e.logger.Error("invariant violation",
			zap.String("op", op),
			zap.Uint("member_id", memberID),
			zap.Uint("book_id", bookID),
			zap.Error(err),
		)
	case apperrors.KindInternal:
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("lending operation failed",
			zap.String("op", op),
			zap.Uint("member_id", memberID),
			zap.Uint("book_id", bookID),
			zap.Error(err),
		)
	default:
		e.logger.Debug("lending operation rejected",
			zap.String("op", op),
			zap.Uint("member_id", memberID),
			zap.Uint("book_id", bookID),
			zap.String("kind", string(kind)),
		)
	}
}
