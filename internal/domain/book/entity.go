package book

import (
	"strings"
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Copies是馆藏总数,AvailableCopies是当前可借数量
// 2. 不变量: 0 <= AvailableCopies <= Copies
// 3. AvailableCopies只能通过CheckOut/CheckIn变化(由借阅引擎调用)
// 4. ISBN是业务唯一标识(按字节比较)
type Book struct {
	ID              uint
	Title           string // 书名
	Author          string // 作者
	ISBN            string // ISBN号
	Category        string // 分类
	PublishYear     int    // 出版年份
	Copies          int    // 馆藏副本数
	AvailableCopies int    // 可借副本数
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// 新书全部副本可借
func NewBook(title, author, isbn, category string, publishYear, copies int, now time.Time) *Book {
	return &Book{
		Title:           strings.TrimSpace(title),
		Author:          strings.TrimSpace(author),
		ISBN:            strings.TrimSpace(isbn),
		Category:        strings.TrimSpace(category),
		PublishYear:     publishYear,
		Copies:          copies,
		AvailableCopies: copies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// OnLoan 在借副本数
func (b *Book) OnLoan() int {
	return b.Copies - b.AvailableCopies
}

// IsAvailable 是否有可借副本
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// CheckOut 借出一本(领域行为)
// 业务规则:没有可借副本时返回ErrNoCopyAvailable
func (b *Book) CheckOut(now time.Time) error {
	if b.AvailableCopies <= 0 {
		return ErrNoCopyAvailable.WithField("book_id", b.ID)
	}
	b.AvailableCopies--
	b.UpdatedAt = now
	return b.CheckInvariant()
}

// CheckIn 归还一本(领域行为)
func (b *Book) CheckIn(now time.Time) error {
	b.AvailableCopies++
	b.UpdatedAt = now
	return b.CheckInvariant()
}

// CheckInvariant 校验 0 <= AvailableCopies <= Copies
func (b *Book) CheckInvariant() error {
	if b.AvailableCopies < 0 || b.AvailableCopies > b.Copies {
		return apperrors.Invariant("book %d: available=%d copies=%d", b.ID, b.AvailableCopies, b.Copies)
	}
	return nil
}

// Clone 防御性复制
func (b *Book) Clone() *Book {
	c := *b
	return &c
}
