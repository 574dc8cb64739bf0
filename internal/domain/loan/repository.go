package loan

import (
	"context"
)

// Repository 借阅记录仓储接口
type Repository interface {
	// Create 创建借阅记录,回填ID
	Create(ctx context.Context, record *Record) error

	// FindByID 根据ID查找记录
	FindByID(ctx context.Context, id uint) (*Record, error)

	// FindActive 查找(会员,图书)的进行中记录,不存在返回ErrRecordNotFound
	FindActive(ctx context.Context, memberID, bookID uint) (*Record, error)

	// Update 整体替换记录
	Update(ctx context.Context, record *Record) error

	// Delete 删除记录(仅用于撤销同一临界区内刚创建的记录)
	Delete(ctx context.Context, id uint) error

	// HasActiveByBook 图书是否有进行中的借阅
	HasActiveByBook(ctx context.Context, bookID uint) (bool, error)

	// List 查询记录(按ID升序)
	List(ctx context.Context, params ListParams) ([]*Record, error)
}

// ListParams 列表查询参数(零值表示不过滤)
type ListParams struct {
	MemberID uint
	BookID   uint
	Status   Status
}
