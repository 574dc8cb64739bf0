package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// loanRepository 借阅记录仓储实现(MySQL)
// 同一(会员,图书)最多一条active记录:借还都先锁会员行,同一会员的写入串行化
type loanRepository struct {
	db  *gorm.DB
	loc *time.Location // 连接串的loc,驱动按它写DATE列
}

// NewLoanRepository 创建借阅记录仓储
func NewLoanRepository(db *gorm.DB, loc *time.Location) loan.Repository {
	return &loanRepository{db: db, loc: loc}
}

// Create 创建借阅记录
func (r *loanRepository) Create(ctx context.Context, rec *loan.Record) error {
	if rec.IsActive() {
		var n int64
		err := getDB(ctx, r.db).Model(&LoanModel{}).
			Where("member_id = ? AND book_id = ? AND status = ?", rec.MemberID, rec.BookID, loan.StatusActive).
			Count(&n).Error
		if err != nil {
			return apperrors.Wrap(err, "查询借阅记录失败")
		}
		if n > 0 {
			return apperrors.Invariant("member %d already has active record for book %d", rec.MemberID, rec.BookID)
		}
	}

	model := toLoanModel(rec, r.loc)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅记录失败")
	}
	rec.ID = model.ID
	return nil
}

// FindByID 根据ID查找记录
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Record, error) {
	var model LoanModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, loan.ErrRecordNotFound.WithField("record_id", id)
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return toLoanEntity(&model), nil
}

// FindActive 查找进行中的记录
func (r *loanRepository) FindActive(ctx context.Context, memberID, bookID uint) (*loan.Record, error) {
	var model LoanModel
	err := getDB(ctx, r.db).
		Where("member_id = ? AND book_id = ? AND status = ?", memberID, bookID, loan.StatusActive).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, loan.ErrRecordNotFound.WithField("member_id", memberID).WithField("book_id", bookID)
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return toLoanEntity(&model), nil
}

// Update 更新记录(状态、归还日期)
func (r *loanRepository) Update(ctx context.Context, rec *loan.Record) error {
	result := getDB(ctx, r.db).Model(&LoanModel{ID: rec.ID}).Select("*").Updates(toLoanModel(rec, r.loc))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅记录失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrRecordNotFound.WithField("record_id", rec.ID)
	}
	return nil
}

// Delete 删除记录
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&LoanModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除借阅记录失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrRecordNotFound.WithField("record_id", id)
	}
	return nil
}

// HasActiveByBook 图书是否有进行中的借阅
func (r *loanRepository) HasActiveByBook(ctx context.Context, bookID uint) (bool, error) {
	var n int64
	err := getDB(ctx, r.db).Model(&LoanModel{}).
		Where("book_id = ? AND status = ?", bookID, loan.StatusActive).
		Count(&n).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return n > 0, nil
}

// List 查询记录(按ID升序)
func (r *loanRepository) List(ctx context.Context, params loan.ListParams) ([]*loan.Record, error) {
	query := getDB(ctx, r.db).Model(&LoanModel{})
	if params.MemberID != 0 {
		query = query.Where("member_id = ?", params.MemberID)
	}
	if params.BookID != 0 {
		query = query.Where("book_id = ?", params.BookID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var models []LoanModel
	if err := query.Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	records := make([]*loan.Record, len(models))
	for i := range models {
		records[i] = toLoanEntity(&models[i])
	}
	return records, nil
}

// toLoanModel 日期按loc的零点写入,驱动换算后DATE列保持原日历日
func toLoanModel(rec *loan.Record, loc *time.Location) *LoanModel {
	model := &LoanModel{
		ID:         rec.ID,
		MemberID:   rec.MemberID,
		BookID:     rec.BookID,
		Status:     rec.Status.String(),
		BorrowDate: storeDate(rec.BorrowDate, loc),
		DueDate:    storeDate(rec.DueDate, loc),
	}
	if rec.ReturnDate != nil {
		d := storeDate(*rec.ReturnDate, loc)
		model.ReturnDate = &d
	}
	return model
}

// toLoanEntity DATE列读出后统一转成UTC零点
func toLoanEntity(model *LoanModel) *loan.Record {
	rec := &loan.Record{
		ID:         model.ID,
		MemberID:   model.MemberID,
		BookID:     model.BookID,
		Status:     loan.Status(model.Status),
		BorrowDate: calendarDate(model.BorrowDate),
		DueDate:    calendarDate(model.DueDate),
	}
	if model.ReturnDate != nil {
		d := calendarDate(*model.ReturnDate)
		rec.ReturnDate = &d
	}
	return rec
}

// storeDate 同一日历日在loc中的零点
func storeDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// calendarDate 保留年月日,丢弃驱动附加的时区
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return clock.Date(y, m, d)
}
