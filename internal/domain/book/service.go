package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/pkg/clock"
)

// MinPublishYear 最早出版年份
const MinPublishYear = 1000

// Service 图书领域服务接口(馆藏目录)
// 设计说明:
// 1. 领域服务封装业务规则校验
// 2. 写操作在TxManager临界区内执行,与借还操作互斥
// 3. 不提供修改AvailableCopies的入口,可借数量只由借阅引擎改变
type Service interface {
	// AddBook 新增图书
	// 业务规则:
	// - 书名/作者/ISBN/分类不能为空
	// - 出版年份在1000到今年之间
	// - 副本数>=1
	// - ISBN不能重复
	AddBook(ctx context.Context, params AddParams) (*Book, error)

	// UpdateBook 部分更新图书信息(只修改传入的字段)
	UpdateBook(ctx context.Context, id uint, params UpdateParams) (*Book, error)

	// RemoveBook 删除图书
	// 业务规则:存在进行中的借阅时不能删除
	RemoveBook(ctx context.Context, id uint) error

	// GetBook 获取图书详情
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, error)
}

// AddParams 新增图书参数
type AddParams struct {
	Title       string
	Author      string
	ISBN        string
	Category    string
	PublishYear int
	Copies      int
}

// UpdateParams 更新图书参数(nil表示不修改)
type UpdateParams struct {
	Title       *string
	Author      *string
	ISBN        *string
	Category    *string
	PublishYear *int
	Copies      *int
}

// service 领域服务实现
type service struct {
	repo      Repository
	loans     LoanChecker
	txManager shared.TxManager
	clock     clock.Clock
}

// NewService 创建图书领域服务
func NewService(repo Repository, loans LoanChecker, txManager shared.TxManager, clk clock.Clock) Service {
	return &service{
		repo:      repo,
		loans:     loans,
		txManager: txManager,
		clock:     clk,
	}
}

// AddBook 新增图书
func (s *service) AddBook(ctx context.Context, params AddParams) (*Book, error) {
	now := s.clock.Now()

	// 1. 参数校验(收集全部违规项)
	v := validator{currentYear: now.Year()}
	v.required("title", params.Title)
	v.required("author", params.Author)
	v.required("isbn", params.ISBN)
	v.required("category", params.Category)
	v.publishYear(params.PublishYear)
	v.copies(params.Copies)
	if err := v.err(); err != nil {
		return nil, err
	}

	b := NewBook(params.Title, params.Author, params.ISBN, params.Category, params.PublishYear, params.Copies, now)

	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		// 2. 检查ISBN是否已存在
		if err := s.ensureISBNFree(ctx, b.ISBN, 0); err != nil {
			return err
		}

		// 3. 持久化
		return s.repo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

// UpdateBook 部分更新图书信息
func (s *service) UpdateBook(ctx context.Context, id uint, params UpdateParams) (*Book, error) {
	now := s.clock.Now()

	var updated *Book
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		// 1. 加锁查询
		b, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		// 2. 合并字段并校验
		v := validator{currentYear: now.Year()}
		if params.Title != nil {
			b.Title = strings.TrimSpace(*params.Title)
			v.required("title", b.Title)
		}
		if params.Author != nil {
			b.Author = strings.TrimSpace(*params.Author)
			v.required("author", b.Author)
		}
		if params.Category != nil {
			b.Category = strings.TrimSpace(*params.Category)
			v.required("category", b.Category)
		}
		if params.PublishYear != nil {
			b.PublishYear = *params.PublishYear
			v.publishYear(b.PublishYear)
		}
		isbnChanged := false
		if params.ISBN != nil {
			isbn := strings.TrimSpace(*params.ISBN)
			v.required("isbn", isbn)
			isbnChanged = isbn != b.ISBN
			b.ISBN = isbn
		}
		if params.Copies != nil {
			// 在借数量保持不变,可借数量随总数调整
			onLoan := b.OnLoan()
			v.copies(*params.Copies)
			if *params.Copies < onLoan {
				v.add(fmt.Sprintf("copies: 不能少于在借数量%d", onLoan))
			}
			b.Copies = *params.Copies
			b.AvailableCopies = b.Copies - onLoan
		}
		if err := v.err(); err != nil {
			return err
		}

		// 3. ISBN变更时检查唯一性
		if isbnChanged {
			if err := s.ensureISBNFree(ctx, b.ISBN, b.ID); err != nil {
				return err
			}
		}

		if err := b.CheckInvariant(); err != nil {
			return err
		}

		// 4. 持久化
		b.UpdatedAt = now
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveBook 删除图书
func (s *service) RemoveBook(ctx context.Context, id uint) error {
	return s.txManager.Transaction(ctx, func(ctx context.Context) error {
		// 1. 图书必须存在
		if _, err := s.repo.LockByID(ctx, id); err != nil {
			return err
		}

		// 2. 存在进行中的借阅时拒绝删除
		onLoan, err := s.loans.HasActiveByBook(ctx, id)
		if err != nil {
			return err
		}
		if onLoan {
			return ErrBookOnLoan.WithField("book_id", id)
		}

		// 3. 执行删除
		return s.repo.Delete(ctx, id)
	})
}

// GetBook 获取图书详情
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, error) {
	params.Keyword = strings.TrimSpace(params.Keyword)
	params.Category = strings.TrimSpace(params.Category)
	return s.repo.List(ctx, params)
}

// ensureISBNFree ISBN未被其他图书占用(selfID为当前图书,新增时为0)
func (s *service) ensureISBNFree(ctx context.Context, isbn string, selfID uint) error {
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrISBNDuplicate.WithField("isbn", isbn)
	}
	return nil
}
