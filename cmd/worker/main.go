// worker 消费借阅事件并写审计日志
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/logger"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zl.Sync()

	if !cfg.MQ.Enabled {
		zl.Fatal("消息队列未启用(mq.enabled=false)")
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	// 3. 连接RabbitMQ
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType,
		cfg.MQ.Queue, messaging.LoanEventRoutingKeys, zl)
	if err != nil {
		zl.Fatal("创建消费者失败", zap.Error(err))
	}
	defer consumer.Close()

	// 4. 消费直到收到退出信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditor := messaging.NewLoanEventAuditor(cfg.MQ.Queue, zl)
	if err := consumer.Consume(ctx, auditor.Handle); err != nil {
		zl.Error("消费中断", zap.Error(err))
		return
	}
	zl.Info("worker已退出")
}
