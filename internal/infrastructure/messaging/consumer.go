package messaging

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

// LoanEventRoutingKeys 审计worker订阅的路由键
var LoanEventRoutingKeys = []string{"loan.*"}

// LoanEventAuditor 借阅事件审计
// 每个事件记一条结构化日志;逾期归还记Warn,便于按罚金告警
type LoanEventAuditor struct {
	queue  string
	logger *zap.Logger
}

// NewLoanEventAuditor 创建审计处理器
func NewLoanEventAuditor(queue string, logger *zap.Logger) *LoanEventAuditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanEventAuditor{queue: queue, logger: logger.Named("audit")}
}

// Handle 处理一条消息(签名与mq.Consumer.Consume的handler一致)
// 消息体无法解析时返回nil直接确认,避免坏消息反复重投
func (a *LoanEventAuditor) Handle(routingKey string, body []byte) error {
	start := time.Now()

	var event loan.Event
	if err := mq.Decode(body, &event); err != nil {
		a.logger.Error("丢弃无法解析的消息", zap.String("routing_key", routingKey), zap.Error(err))
		metrics.RecordMessageConsumed(a.queue, "dropped", time.Since(start))
		return nil
	}
	if event.Type != routingKey {
		a.logger.Error("丢弃类型与路由键不一致的消息",
			zap.String("routing_key", routingKey),
			zap.String("type", event.Type),
		)
		metrics.RecordMessageConsumed(a.queue, "dropped", time.Since(start))
		return nil
	}

	fields := []zap.Field{
		zap.String("type", event.Type),
		zap.Uint("record_id", event.RecordID),
		zap.Uint("member_id", event.MemberID),
		zap.Uint("book_id", event.BookID),
		zap.String("borrow_date", event.BorrowDate),
		zap.String("due_date", event.DueDate),
	}

	switch event.Type {
	case loan.EventBorrowed:
		a.logger.Info("图书借出", fields...)
	case loan.EventReturned:
		fields = append(fields, zap.String("return_date", event.ReturnDate))
		if event.IsLate {
			fields = append(fields, zap.Int("days_late", event.DaysLate), zap.Int64("fine", event.Fine))
			a.logger.Warn("逾期归还", fields...)
		} else {
			a.logger.Info("图书归还", fields...)
		}
	default:
		metrics.RecordMessageConsumed(a.queue, "failure", time.Since(start))
		return fmt.Errorf("未知事件类型: %s", event.Type)
	}

	metrics.RecordMessageConsumed(a.queue, "success", time.Since(start))
	return nil
}
