//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 生成命令:wire gen ./cmd/api
// 依赖链:Storage ← Domain Service/Engine ← UseCase ← Handler ← Router

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/library/internal/application/book"
	applending "github.com/xiebiao/library/internal/application/lending"
	appmember "github.com/xiebiao/library/internal/application/member"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// infrastructureSet 基础设施层依赖
// 包含:存储后端、图书缓存、事件发布、时钟
var infrastructureSet = wire.NewSet(
	provideStorage,
	provideBookRepository,
	provideMemberRepository,
	provideLoanRepository,
	provideTxManager,
	provideLoanChecker,
	provideBookCache,
	provideEventPublisher,
	provideClock,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewService,
	member.NewService,
	provideLedger,
	providePolicy,
	lending.NewEngine,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appbook.NewAddBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appmember.NewRegisterUseCase,
	appmember.NewUpdateMemberUseCase,
	appmember.NewDeleteMemberUseCase,
	appmember.NewGetMemberUseCase,
	appmember.NewListMembersUseCase,
	applending.NewBorrowBookUseCase,
	applending.NewReturnBookUseCase,
	applending.NewListLoansUseCase,
)

// interfaceSet 接口层依赖
var interfaceSet = wire.NewSet(
	provideAPIKeyMiddleware,
	handler.NewBookHandler,
	handler.NewMemberHandler,
	handler.NewLendingHandler,
	router.New,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序释放数据库、Redis、RabbitMQ连接
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
