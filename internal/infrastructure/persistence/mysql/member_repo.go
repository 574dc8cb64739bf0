package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// memberRepository 会员仓储实现(MySQL)
// 邮箱入库前已转小写,唯一索引即可保证不区分大小写唯一
type memberRepository struct {
	db  *gorm.DB
	loc *time.Location
}

// NewMemberRepository 创建会员仓储
// loc与连接串的loc参数一致,入会日期按它写入DATE列
func NewMemberRepository(db *gorm.DB, loc *time.Location) member.Repository {
	return &memberRepository{db: db, loc: loc}
}

// Create 创建会员
func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	model := toMemberModel(m, r.loc)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return member.ErrEmailDuplicate.WithField("email", m.Email)
		}
		return apperrors.Wrap(err, "创建会员失败")
	}

	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	m.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找会员
func (r *memberRepository) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	var model MemberModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, member.ErrMemberNotFound.WithField("member_id", id)
		}
		return nil, apperrors.Wrap(err, "查询会员失败")
	}
	return toMemberEntity(&model), nil
}

// FindByEmail 根据邮箱查找会员
func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	var model MemberModel
	err := getDB(ctx, r.db).Where("email = ?", member.NormalizeEmail(email)).First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, member.ErrMemberNotFound.WithField("email", email)
		}
		return nil, apperrors.Wrap(err, "查询会员失败")
	}
	return toMemberEntity(&model), nil
}

// Update 更新会员信息(全部字段,含借阅集合)
func (r *memberRepository) Update(ctx context.Context, m *member.Member) error {
	model := toMemberModel(m, r.loc)
	result := getDB(ctx, r.db).Model(&MemberModel{ID: m.ID}).Select("*").Omit("created_at").Updates(model)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return member.ErrEmailDuplicate.WithField("email", m.Email)
		}
		return apperrors.Wrap(result.Error, "更新会员失败")
	}
	if result.RowsAffected == 0 {
		return member.ErrMemberNotFound.WithField("member_id", m.ID)
	}
	return nil
}

// Delete 删除会员
func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&MemberModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除会员失败")
	}
	if result.RowsAffected == 0 {
		return member.ErrMemberNotFound.WithField("member_id", id)
	}
	return nil
}

// List 查询全部会员(按ID升序)
func (r *memberRepository) List(ctx context.Context) ([]*member.Member, error) {
	var models []MemberModel
	if err := getDB(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询会员列表失败")
	}

	members := make([]*member.Member, len(models))
	for i := range models {
		members[i] = toMemberEntity(&models[i])
	}
	return members, nil
}

// LockByID 悲观锁查询会员
func (r *memberRepository) LockByID(ctx context.Context, id uint) (*member.Member, error) {
	var model MemberModel
	err := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, member.ErrMemberNotFound.WithField("member_id", id)
		}
		return nil, apperrors.Wrap(err, "锁定会员失败")
	}
	return toMemberEntity(&model), nil
}

func toMemberModel(m *member.Member, loc *time.Location) *MemberModel {
	borrowed := m.BorrowedBooks
	if borrowed == nil {
		borrowed = []uint{}
	}
	return &MemberModel{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		MembershipDate: storeDate(m.MembershipDate, loc),
		BorrowedBooks:  borrowed,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toMemberEntity(model *MemberModel) *member.Member {
	borrowed := make([]uint, len(model.BorrowedBooks))
	copy(borrowed, model.BorrowedBooks)
	return &member.Member{
		ID:             model.ID,
		Name:           model.Name,
		Email:          model.Email,
		Phone:          model.Phone,
		MembershipDate: calendarDate(model.MembershipDate),
		BorrowedBooks:  borrowed,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
