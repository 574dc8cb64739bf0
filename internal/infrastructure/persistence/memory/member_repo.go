package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/pkg/idgen"
)

// memberRepository 会员仓储实现(内存)
type memberRepository struct {
	mu      sync.RWMutex
	members map[uint]*member.Member
	ids     idgen.Generator
}

// NewMemberRepository 创建会员仓储
func NewMemberRepository(ids idgen.Generator) member.Repository {
	return &memberRepository{
		members: make(map[uint]*member.Member),
		ids:     ids,
	}
}

// Create 创建会员(邮箱不区分大小写唯一)
func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := member.NormalizeEmail(m.Email)
	for _, existing := range r.members {
		if existing.Email == email {
			return member.ErrEmailDuplicate.WithField("email", email)
		}
	}

	m.Email = email
	if m.BorrowedBooks == nil {
		m.BorrowedBooks = []uint{}
	}
	if m.ID == 0 {
		m.ID = r.ids.Next()
	} else {
		r.ids.Observe(m.ID)
	}
	r.members[m.ID] = m.Clone()
	return nil
}

// FindByID 根据ID查找会员
func (r *memberRepository) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[id]
	if !ok {
		return nil, member.ErrMemberNotFound.WithField("member_id", id)
	}
	return m.Clone(), nil
}

// FindByEmail 根据邮箱查找会员
func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = member.NormalizeEmail(email)
	for _, m := range r.members {
		if m.Email == email {
			return m.Clone(), nil
		}
	}
	return nil, member.ErrMemberNotFound.WithField("email", email)
}

// Update 整体替换
func (r *memberRepository) Update(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[m.ID]; !ok {
		return member.ErrMemberNotFound.WithField("member_id", m.ID)
	}
	r.members[m.ID] = m.Clone()
	return nil
}

// Delete 删除会员
func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return member.ErrMemberNotFound.WithField("member_id", id)
	}
	delete(r.members, id)
	return nil
}

// List 查询全部会员(按ID升序)
func (r *memberRepository) List(ctx context.Context) ([]*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*member.Member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m.Clone())
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

// LockByID 内存实现由TxManager的全局锁保护,直接查询
func (r *memberRepository) LockByID(ctx context.Context, id uint) (*member.Member, error) {
	return r.FindByID(ctx, id)
}
