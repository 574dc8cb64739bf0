// Package router 注册HTTP路由
package router

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// Endpoint 已注册的接口
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// New 创建Gin引擎并注册全部路由
//
// 路由结构:
//
//	GET  /                 接口列表
//	GET  /ping             健康检查
//	GET  /metrics          Prometheus指标
//	GET  /swagger/*any     API文档
//	     /api/v1/...       业务接口(需要API Key)
func New(
	cfg *config.Config,
	log *zap.Logger,
	apiKey *middleware.APIKeyMiddleware,
	bookHandler *handler.BookHandler,
	memberHandler *handler.MemberHandler,
	lendingHandler *handler.LendingHandler,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	dto.RegisterTagNames()

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log),
	)
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	if cfg.Server.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// API路由组
	v1 := r.Group("/api/v1")
	v1.Use(apiKey.RequireAPIKey())
	{
		// 图书模块
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.POST("", bookHandler.AddBook)
			books.GET("/:id", bookHandler.GetBook)
			books.PUT("/:id", bookHandler.UpdateBook)
			books.DELETE("/:id", bookHandler.DeleteBook)
		}

		// 会员模块
		members := v1.Group("/members")
		{
			members.GET("", memberHandler.ListMembers)
			members.POST("", memberHandler.Register)
			members.GET("/:id", memberHandler.GetMember)
			members.PUT("/:id", memberHandler.UpdateMember)
			members.DELETE("/:id", memberHandler.DeleteMember)
			members.GET("/:id/loans", memberHandler.ListMemberLoans)
		}

		// 借阅模块
		v1.POST("/borrow", lendingHandler.Borrow)
		v1.POST("/return", lendingHandler.Return)
		v1.GET("/loans", lendingHandler.ListLoans)
		v1.GET("/borrow-records", lendingHandler.ListLoans) // 兼容旧路径
	}

	// 接口列表(在全部路由注册之后生成)
	endpoints := listEndpoints(r)
	r.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"service":   cfg.Tracing.ServiceName,
			"endpoints": endpoints,
		})
	})

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound.WithMessage("接口不存在").WithField("path", c.Request.URL.Path))
	})

	return r
}

func listEndpoints(r *gin.Engine) []Endpoint {
	routes := r.Routes()
	endpoints := make([]Endpoint, 0, len(routes)+1)
	endpoints = append(endpoints, Endpoint{Method: http.MethodGet, Path: "/"})
	for _, rt := range routes {
		endpoints = append(endpoints, Endpoint{Method: rt.Method, Path: rt.Path})
	}
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})
	return endpoints
}
