package shared

import "context"

// TxManager 事务管理器接口(依赖倒置)
// 设计说明:
// 1. fn内所有Repository操作在同一事务(临界区)中执行
// 2. fn返回error时回滚,返回nil时提交
// 3. 内存实现用全局互斥锁串行化写操作,MySQL实现使用数据库事务
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    b, err := bookRepo.LockByID(ctx, bookID)
//	    ...
//	})
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
