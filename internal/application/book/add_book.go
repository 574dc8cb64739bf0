package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// AddBookUseCase 新增图书用例
// 设计说明:
// 1. 应用层负责用例编排,业务规则由领域服务校验
// 2. 输入输出使用DTO,与HTTP层解耦
type AddBookUseCase struct {
	bookService book.Service
}

// NewAddBookUseCase 创建新增图书用例
func NewAddBookUseCase(bookService book.Service) *AddBookUseCase {
	return &AddBookUseCase{bookService: bookService}
}

// AddBookRequest 新增图书请求
type AddBookRequest struct {
	Title       string
	Author      string
	ISBN        string
	Category    string
	PublishYear int
	Copies      int
}

// Execute 执行新增图书
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*BookResponse, error) {
	b, err := uc.bookService.AddBook(ctx, book.AddParams{
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
	return NewBookResponse(b), nil
}
