package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/metrics"
)

// GetBookUseCase 图书详情用例(Cache-Aside)
// 1. 先查缓存
// 2. 未命中时记下版本,查库后按版本回填(期间有写入则放弃回填)
// 3. 缓存故障降级为直接查库
type GetBookUseCase struct {
	bookService book.Service
	cache       Cache
	logger      *zap.Logger
}

// NewGetBookUseCase 创建图书详情用例
func NewGetBookUseCase(bookService book.Service, cache Cache, logger *zap.Logger) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, cache: cache, logger: logger}
}

// Execute 查询图书详情
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	cached, ok, err := uc.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.RecordCache("error")
		uc.logger.Warn("读取图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
	case ok:
		metrics.RecordCache("hit")
		return NewBookResponse(cached), nil
	default:
		metrics.RecordCache("miss")
	}

	// 版本必须在查库之前读取
	version, verErr := uc.cache.Version(ctx, id)
	if verErr != nil {
		uc.logger.Warn("读取缓存版本失败", zap.Uint("book_id", id), zap.Error(verErr))
	}

	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if verErr == nil {
		stored, err := uc.cache.Set(ctx, b, version)
		switch {
		case err != nil:
			uc.logger.Warn("写入图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
		case !stored:
			metrics.RecordCache("stale")
		}
	}
	return NewBookResponse(b), nil
}

// ListBooksUseCase 图书列表用例(不分页)
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Keyword  string // 搜索标题、作者
	Category string
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) ([]*BookResponse, error) {
	books, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Keyword:  req.Keyword,
		Category: req.Category,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*BookResponse, len(books))
	for i, b := range books {
		list[i] = NewBookResponse(b)
	}
	return list, nil
}
