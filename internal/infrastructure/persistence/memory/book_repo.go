package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/idgen"
)

// bookRepository 图书仓储实现(内存)
// 设计说明:
// 1. map保存实体副本,读写都复制,调用方拿到的对象与存储互不影响
// 2. ID由idgen.Sequence分配(最大ID+1)
type bookRepository struct {
	mu    sync.RWMutex
	books map[uint]*book.Book
	ids   idgen.Generator
}

// NewBookRepository 创建图书仓储
func NewBookRepository(ids idgen.Generator) book.Repository {
	return &bookRepository{
		books: make(map[uint]*book.Book),
		ids:   ids,
	}
}

// Create 创建图书
// ID为0时分配新ID;非0时(导入数据)保留原ID并推进生成器
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.books {
		if existing.ISBN == b.ISBN {
			return book.ErrISBNDuplicate.WithField("isbn", b.ISBN)
		}
	}

	if b.ID == 0 {
		b.ID = r.ids.Next()
	} else {
		r.ids.Observe(b.ID)
	}
	r.books[b.ID] = b.Clone()
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound.WithField("book_id", id)
	}
	return b.Clone(), nil
}

// FindByISBN 根据ISBN查找图书(按字节比较)
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.books {
		if b.ISBN == isbn {
			return b.Clone(), nil
		}
	}
	return nil, book.ErrBookNotFound.WithField("isbn", isbn)
}

// Update 整体替换
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound.WithField("book_id", b.ID)
	}
	r.books[b.ID] = b.Clone()
	return nil
}

// Delete 删除图书
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return book.ErrBookNotFound.WithField("book_id", id)
	}
	delete(r.books, id)
	return nil
}

// List 查询图书(按ID升序)
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keyword := strings.ToLower(params.Keyword)
	books := make([]*book.Book, 0, len(r.books))
	for _, b := range r.books {
		if params.Category != "" && !strings.EqualFold(b.Category, params.Category) {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(b.Title), keyword) &&
			!strings.Contains(strings.ToLower(b.Author), keyword) {
			continue
		}
		books = append(books, b.Clone())
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

// LockByID 内存实现由TxManager的全局锁保护,直接查询
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}
