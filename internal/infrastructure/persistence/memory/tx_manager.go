package memory

import (
	"context"
	"sync"

	"github.com/xiebiao/library/internal/domain/shared"
)

type txKey struct{}

// TxManager 内存事务管理器
// 设计说明:
// 1. 进程内全局互斥锁,所有写操作(借还、增删改)串行执行
// 2. 读操作不经过TxManager,直接读取各仓储(仓储内部有读写锁,单条记录整体替换)
// 3. 同一Context内的嵌套调用直接执行,不重复加锁
// 4. 没有回滚能力:调用方必须先检查后写入(借阅引擎另有saga补偿)
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager 创建内存事务管理器
func NewTxManager() *TxManager {
	return &TxManager{}
}

var _ shared.TxManager = (*TxManager)(nil)

// Transaction 在全局锁内执行fn
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, true))
}
