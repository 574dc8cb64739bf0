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

// ReturnBookUseCase 还书用例
type ReturnBookUseCase struct {
	engine *lending.Engine
	events loan.EventPublisher
	cache  appbook.Cache
	clock  clock.Clock
	logger *zap.Logger
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	engine *lending.Engine,
	events loan.EventPublisher,
	cache appbook.Cache,
	clk clock.Clock,
	logger *zap.Logger,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		engine: engine,
		events: events,
		cache:  cache,
		clock:  clk,
		logger: logger,
	}
}

// ReturnBookRequest 还书请求
type ReturnBookRequest struct {
	MemberID uint
	BookID   uint
}

// Execute 执行还书,返回逾期天数与罚金
func (uc *ReturnBookUseCase) Execute(ctx context.Context, req ReturnBookRequest) (*ReturnBookResponse, error) {
	res, err := uc.engine.Return(ctx, req.MemberID, req.BookID)
	if err != nil {
		return nil, err
	}

	metrics.RecordReturn(res.IsLate, res.DaysLate, res.Fine)
	afterCommit(ctx, uc.cache, uc.events, uc.logger, req.BookID,
		loan.NewReturnedEvent(res.Record, res.Assessment, uc.clock.Now()))

	uc.logger.Info("图书归还",
		zap.Uint("record_id", res.Record.ID),
		zap.Uint("member_id", req.MemberID),
		zap.Uint("book_id", req.BookID),
		zap.Bool("late", res.IsLate),
		zap.Int("days_late", res.DaysLate),
		zap.Int64("fine", res.Fine),
	)
	return newReturnBookResponse(res), nil
}
