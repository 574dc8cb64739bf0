package lending

import (
	"context"

	"go.uber.org/zap"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/metrics"
)

// BorrowBookUseCase 借书用例
// 设计说明:
// 1. 借还规则全部在借阅引擎内完成(临界区 + 补偿)
// 2. 提交后的副作用(删除图书缓存、发布事件)失败只记日志,不影响借书结果
type BorrowBookUseCase struct {
	engine *lending.Engine
	events loan.EventPublisher
	cache  appbook.Cache
	clock  clock.Clock
	logger *zap.Logger
}

// NewBorrowBookUseCase 创建借书用例
func NewBorrowBookUseCase(
	engine *lending.Engine,
	events loan.EventPublisher,
	cache appbook.Cache,
	clk clock.Clock,
	logger *zap.Logger,
) *BorrowBookUseCase {
	return &BorrowBookUseCase{
		engine: engine,
		events: events,
		cache:  cache,
		clock:  clk,
		logger: logger,
	}
}

// BorrowBookRequest 借书请求
type BorrowBookRequest struct {
	MemberID uint
	BookID   uint
}

// Execute 执行借书
func (uc *BorrowBookUseCase) Execute(ctx context.Context, req BorrowBookRequest) (*BorrowBookResponse, error) {
	res, err := uc.engine.Borrow(ctx, req.MemberID, req.BookID)
	if err != nil {
		return nil, err
	}

	metrics.RecordBorrow()
	afterCommit(ctx, uc.cache, uc.events, uc.logger, req.BookID,
		loan.NewBorrowedEvent(res.Record, uc.clock.Now()))

	uc.logger.Info("图书借出",
		zap.Uint("record_id", res.Record.ID),
		zap.Uint("member_id", req.MemberID),
		zap.Uint("book_id", req.BookID),
		zap.String("due_date", clock.FormatDate(res.DueDate)),
	)
	return newBorrowBookResponse(res), nil
}

// afterCommit 删除图书缓存(可借数量已变化)并发布事件
func afterCommit(ctx context.Context, cache appbook.Cache, events loan.EventPublisher, logger *zap.Logger, bookID uint, event loan.Event) {
	if err := cache.Invalidate(ctx, bookID); err != nil {
		logger.Warn("删除图书缓存失败", zap.Uint("book_id", bookID), zap.Error(err))
	}
	if err := events.Publish(ctx, event); err != nil {
		logger.Warn("发布借阅事件失败",
			zap.String("type", event.Type),
			zap.Uint("record_id", event.RecordID),
			zap.Error(err),
		)
	}
}
