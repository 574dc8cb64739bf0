package messaging

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/metrics"
)

// sender 消息发送(由*mq.Publisher实现)
type sender interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// LoanEventPublisher 借阅事件发布器
// 设计说明:
// 1. 路由键即事件类型(loan.borrowed / loan.returned)
// 2. 熔断器保护:RabbitMQ不可用时快速失败,不拖慢借还请求
// 3. 调用方只记录失败,不回滚业务
type LoanEventPublisher struct {
	sender   sender
	breaker  *circuitbreaker.CircuitBreaker
	exchange string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewLoanEventPublisher 创建借阅事件发布器
func NewLoanEventPublisher(s sender, exchange string, logger *zap.Logger) *LoanEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("events")

	cb := circuitbreaker.NewCircuitBreaker("loan-events", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.Warn("熔断器状态变化",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		metrics.SetCircuitBreakerState(name, int(to))
	})

	return &LoanEventPublisher{
		sender:   s,
		breaker:  cb,
		exchange: exchange,
		timeout:  3 * time.Second,
		logger:   logger,
	}
}

var _ loan.EventPublisher = (*LoanEventPublisher)(nil)

// Publish 发布事件
func (p *LoanEventPublisher) Publish(ctx context.Context, event loan.Event) error {
	err := p.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return p.sender.Publish(ctx, event.Type, event)
	})

	switch {
	case err == nil:
		metrics.RecordCircuitBreakerRequest(p.breaker.Name(), "success")
		metrics.RecordMessagePublished(p.exchange, event.Type, "success")
	case errors.Is(err, circuitbreaker.ErrOpenState), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(p.breaker.Name(), "rejected")
		metrics.RecordMessagePublished(p.exchange, event.Type, "rejected")
	default:
		metrics.RecordCircuitBreakerRequest(p.breaker.Name(), "failure")
		metrics.RecordMessagePublished(p.exchange, event.Type, "failure")
	}
	return err
}

// State 熔断器当前状态
func (p *LoanEventPublisher) State() circuitbreaker.State {
	return p.breaker.State()
}

// NoopPublisher 未启用消息队列时使用,只打印调试日志
type NoopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher 创建空发布器
func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopPublisher{logger: logger.Named("events")}
}

// Publish 丢弃事件
func (p *NoopPublisher) Publish(ctx context.Context, event loan.Event) error {
	p.logger.Debug("事件未发布(消息队列未启用)",
		zap.String("type", event.Type),
		zap.Uint("record_id", event.RecordID),
	)
	return nil
}
