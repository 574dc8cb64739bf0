package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(内存/MySQL)
// 2. 返回的实体是副本,修改后必须调用Update才会生效
type Repository interface {
	// Create 创建图书,回填ID
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书(精确匹配)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 整体替换图书记录
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书
	Delete(ctx context.Context, id uint) error

	// List 查询图书列表(不分页)
	List(ctx context.Context, params ListParams) ([]*Book, error)

	// LockByID 加锁查询图书(MySQL使用SELECT FOR UPDATE,必须在事务中调用)
	LockByID(ctx context.Context, id uint) (*Book, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Keyword  string // 搜索关键词(标题、作者)
	Category string // 分类精确匹配
}

// LoanChecker 查询图书是否有进行中的借阅
// 由借阅记录仓储实现,避免book包依赖loan包
type LoanChecker interface {
	HasActiveByBook(ctx context.Context, bookID uint) (bool, error)
}
