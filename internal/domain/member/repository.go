package member

import (
	"context"
)

// Repository 会员仓储接口
type Repository interface {
	// Create 创建会员,回填ID
	Create(ctx context.Context, member *Member) error

	// FindByID 根据ID查找会员
	FindByID(ctx context.Context, id uint) (*Member, error)

	// FindByEmail 根据邮箱查找会员(不区分大小写)
	FindByEmail(ctx context.Context, email string) (*Member, error)

	// Update 整体替换会员记录
	Update(ctx context.Context, member *Member) error

	// Delete 删除会员
	Delete(ctx context.Context, id uint) error

	// List 查询全部会员
	List(ctx context.Context) ([]*Member, error)

	// LockByID 加锁查询会员(必须在事务中调用)
	LockByID(ctx context.Context, id uint) (*Member, error)
}
