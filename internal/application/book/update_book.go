package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
)

// UpdateBookUseCase 更新图书用例
// 更新成功后删除详情缓存
type UpdateBookUseCase struct {
	bookService book.Service
	cache       Cache
	logger      *zap.Logger
}

// NewUpdateBookUseCase 创建更新图书用例
func NewUpdateBookUseCase(bookService book.Service, cache Cache, logger *zap.Logger) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService, cache: cache, logger: logger}
}

// UpdateBookRequest 更新图书请求(nil表示不修改)
type UpdateBookRequest struct {
	Title       *string
	Author      *string
	ISBN        *string
	Category    *string
	PublishYear *int
	Copies      *int
}

// Execute 执行更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, req UpdateBookRequest) (*BookResponse, error) {
	b, err := uc.bookService.UpdateBook(ctx, id, book.UpdateParams{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		PublishYear: req.PublishYear,
		Copies:      req.Copies,
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, uc.cache, uc.logger, id)
	return NewBookResponse(b), nil
}

// DeleteBookUseCase 删除图书用例
type DeleteBookUseCase struct {
	bookService book.Service
	cache       Cache
	logger      *zap.Logger
}

// NewDeleteBookUseCase 创建删除图书用例
func NewDeleteBookUseCase(bookService book.Service, cache Cache, logger *zap.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService, cache: cache, logger: logger}
}

// Execute 执行删除,返回被删除的图书
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.bookService.RemoveBook(ctx, id); err != nil {
		return nil, err
	}

	invalidate(ctx, uc.cache, uc.logger, id)
	return NewBookResponse(b), nil
}

// invalidate 删除缓存失败只记日志(缓存有TTL兜底)
func invalidate(ctx context.Context, cache Cache, logger *zap.Logger, ids ...uint) {
	if err := cache.Invalidate(ctx, ids...); err != nil {
		logger.Warn("删除图书缓存失败", zap.Uints("book_ids", ids), zap.Error(err))
	}
}
