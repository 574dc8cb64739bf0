package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/idgen"
	"github.com/xiebiao/library/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Engine *gin.Engine
}

func newApp(cfg *config.Config, log *zap.Logger, engine *gin.Engine) *App {
	return &App{Config: cfg, Logger: log, Engine: engine}
}

// storage 按配置选择的存储后端
type storage struct {
	books     book.Repository
	members   member.Repository
	loans     loan.Repository
	txManager shared.TxManager
}

// provideStorage 创建存储后端
// memory: 进程内存储,可选写入演示数据
// mysql:  GORM + MySQL,启动时自动迁移表结构
func provideStorage(cfg *config.Config, clk clock.Clock, log *zap.Logger) (*storage, func(), error) {
	if cfg.Storage.Driver == config.StorageMySQL {
		loc, err := cfg.Database.Location()
		if err != nil {
			return nil, nil, err
		}
		db, err := mysql.NewDB(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return &storage{
			books:     mysql.NewBookRepository(db),
			members:   mysql.NewMemberRepository(db, loc),
			loans:     mysql.NewLoanRepository(db, loc),
			txManager: mysql.NewTxManager(db),
		}, cleanup, nil
	}

	s := &storage{
		books:     memory.NewBookRepository(idgen.NewSequence(0)),
		members:   memory.NewMemberRepository(idgen.NewSequence(0)),
		loans:     memory.NewLoanRepository(idgen.NewSequence(0)),
		txManager: memory.NewTxManager(),
	}
	if cfg.Storage.Seed {
		err := memory.Seed(context.Background(), memory.Store{
			Books:   s.books,
			Members: s.members,
			Loans:   s.loans,
		}, clk, cfg.Lending.LoanPeriodDays)
		if err != nil {
			return nil, nil, err
		}
		log.Info("演示数据已写入内存存储")
	}
	return s, func() {}, nil
}

func provideBookRepository(s *storage) book.Repository {
	return s.books
}

func provideMemberRepository(s *storage) member.Repository {
	return s.members
}

func provideLoanRepository(s *storage) loan.Repository {
	return s.loans
}

func provideTxManager(s *storage) shared.TxManager {
	return s.txManager
}

// provideLoanChecker 图书删除前检查在借记录
func provideLoanChecker(repo loan.Repository) book.LoanChecker {
	return repo
}

func provideClock() clock.Clock {
	return clock.System{}
}

func provideLedger(repo loan.Repository, cfg *config.Config) loan.Ledger {
	return loan.NewLedger(repo, cfg.Lending.LoanPeriodDays)
}

func providePolicy(cfg *config.Config) lending.Policy {
	return lending.Policy{
		LoanPeriodDays: cfg.Lending.LoanPeriodDays,
		FinePerDay:     cfg.Lending.FinePerDay,
	}
}

// provideBookCache Redis未启用时不缓存
func provideBookCache(cfg *config.Config, log *zap.Logger) (appbook.Cache, func(), error) {
	if !cfg.Redis.Enabled {
		return appbook.NoopCache{}, func() {}, nil
	}
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewBookCache(client, cfg.Redis.CacheTTL), func() { client.Close() }, nil
}

// provideEventPublisher 借阅事件发布
// RabbitMQ连接失败时降级为只记日志,不阻止服务启动
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (loan.EventPublisher, func()) {
	if !cfg.MQ.Enabled {
		return messaging.NewNoopPublisher(log), func() {}
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, log)
	if err != nil {
		log.Warn("RabbitMQ不可用，借阅事件只记录日志", zap.Error(err))
		return messaging.NewNoopPublisher(log), func() {}
	}
	return messaging.NewLoanEventPublisher(pub, cfg.MQ.Exchange, log), func() { pub.Close() }
}

func provideAPIKeyMiddleware(cfg *config.Config) (*middleware.APIKeyMiddleware, error) {
	return middleware.NewAPIKeyMiddleware(cfg.Auth.APIKey, cfg.Auth.Header)
}
