package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/idgen"
)

// loanRepository 借阅记录仓储实现(内存)
// 维护(会员,图书)→进行中记录ID的索引,保证同一对最多一条active记录
type loanRepository struct {
	mu      sync.RWMutex
	records map[uint]*loan.Record
	active  map[pairKey]uint
	ids     idgen.Generator
}

type pairKey struct {
	memberID uint
	bookID   uint
}

// NewLoanRepository 创建借阅记录仓储
func NewLoanRepository(ids idgen.Generator) loan.Repository {
	return &loanRepository{
		records: make(map[uint]*loan.Record),
		active:  make(map[pairKey]uint),
		ids:     ids,
	}
}

// Create 创建借阅记录
func (r *loanRepository) Create(ctx context.Context, rec *loan.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{rec.MemberID, rec.BookID}
	if rec.IsActive() {
		if id, ok := r.active[key]; ok {
			return apperrors.Invariant("member %d already has active record %d for book %d", rec.MemberID, id, rec.BookID)
		}
	}

	if rec.ID == 0 {
		rec.ID = r.ids.Next()
	} else {
		r.ids.Observe(rec.ID)
	}
	r.records[rec.ID] = rec.Clone()
	if rec.IsActive() {
		r.active[key] = rec.ID
	}
	return nil
}

// FindByID 根据ID查找记录
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, loan.ErrRecordNotFound.WithField("record_id", id)
	}
	return rec.Clone(), nil
}

// FindActive 查找进行中的记录
func (r *loanRepository) FindActive(ctx context.Context, memberID, bookID uint) (*loan.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.active[pairKey{memberID, bookID}]
	if !ok {
		return nil, loan.ErrRecordNotFound.WithField("member_id", memberID).WithField("book_id", bookID)
	}
	return r.records[id].Clone(), nil
}

// Update 整体替换记录并维护active索引
func (r *loanRepository) Update(ctx context.Context, rec *loan.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.ID]; !ok {
		return loan.ErrRecordNotFound.WithField("record_id", rec.ID)
	}
	key := pairKey{rec.MemberID, rec.BookID}
	if rec.IsActive() {
		if id, ok := r.active[key]; ok && id != rec.ID {
			return apperrors.Invariant("member %d already has active record %d for book %d", rec.MemberID, id, rec.BookID)
		}
		r.active[key] = rec.ID
	} else if r.active[key] == rec.ID {
		delete(r.active, key)
	}
	r.records[rec.ID] = rec.Clone()
	return nil
}

// Delete 删除记录
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return loan.ErrRecordNotFound.WithField("record_id", id)
	}
	key := pairKey{rec.MemberID, rec.BookID}
	if r.active[key] == id {
		delete(r.active, key)
	}
	delete(r.records, id)
	return nil
}

// HasActiveByBook 图书是否有进行中的借阅
func (r *loanRepository) HasActiveByBook(ctx context.Context, bookID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for key := range r.active {
		if key.bookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

// List 查询记录(按ID升序)
func (r *loanRepository) List(ctx context.Context, params loan.ListParams) ([]*loan.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*loan.Record, 0, len(r.records))
	for _, rec := range r.records {
		if params.MemberID != 0 && rec.MemberID != params.MemberID {
			continue
		}
		if params.BookID != 0 && rec.BookID != params.BookID {
			continue
		}
		if params.Status != "" && rec.Status != params.Status {
			continue
		}
		records = append(records, rec.Clone())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}
