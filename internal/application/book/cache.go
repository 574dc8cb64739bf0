package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// Cache 图书详情缓存(由infrastructure/persistence/redis实现)
//
// 每本书带一个版本号,Invalidate删除缓存并递增版本。
// 回填前先取版本,Set只在版本未变时写入:
// 查库后、回填前发生的借还或修改会让这次回填作废,不会把旧的可借数量写回缓存。
type Cache interface {
	Get(ctx context.Context, id uint) (*book.Book, bool, error)
	Version(ctx context.Context, id uint) (int64, error)
	// Set 版本一致时写入,返回是否写入
	Set(ctx context.Context, b *book.Book, version int64) (bool, error)
	Invalidate(ctx context.Context, ids ...uint) error
}

// NoopCache 未启用Redis时使用
type NoopCache struct{}

// Get 总是未命中
func (NoopCache) Get(ctx context.Context, id uint) (*book.Book, bool, error) {
	return nil, false, nil
}

func (NoopCache) Version(ctx context.Context, id uint) (int64, error) {
	return 0, nil
}

// Set 不缓存,视为已写入
func (NoopCache) Set(ctx context.Context, b *book.Book, version int64) (bool, error) {
	return true, nil
}

func (NoopCache) Invalidate(ctx context.Context, ids ...uint) error {
	return nil
}
