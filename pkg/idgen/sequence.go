// Package idgen 单调递增的ID生成器
//
// 规则:下一个ID = 已知最大ID + 1,空集合从1开始。
// 加载已有数据时调用Observe把计数器推进到最大ID。
package idgen

import "sync"

// Generator ID生成器接口
type Generator interface {
	Next() uint
	Observe(id uint)
}

// Sequence 基于互斥锁的计数器
type Sequence struct {
	mu   sync.Mutex
	last uint
}

// NewSequence 创建生成器,seed为已有数据的最大ID
func NewSequence(seed uint) *Sequence {
	return &Sequence{last: seed}
}

// Next 分配下一个ID
func (s *Sequence) Next() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Observe 记录一个已存在的ID,保证之后分配的ID更大
func (s *Sequence) Observe(id uint) {
	s.mu.Lock()
	if id > s.last {
		s.last = id
	}
	s.mu.Unlock()
}

// Last 当前最大ID
func (s *Sequence) Last() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
