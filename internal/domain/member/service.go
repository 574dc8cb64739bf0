package member

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// Service 会员领域服务
// 设计说明:
// 1. 校验规则一次性收集全部违规项
// 2. 邮箱唯一性在临界区内检查,不依赖数据库索引的大小写规则
type Service interface {
	// Register 会员注册
	Register(ctx context.Context, params RegisterParams) (*Member, error)

	// UpdateMember 部分更新会员信息
	UpdateMember(ctx context.Context, id uint, params UpdateParams) (*Member, error)

	// RemoveMember 删除会员
	// 业务规则:有未还图书时不能删除
	RemoveMember(ctx context.Context, id uint) error

	// GetMember 获取会员详情
	GetMember(ctx context.Context, id uint) (*Member, error)

	// ListMembers 查询全部会员
	ListMembers(ctx context.Context) ([]*Member, error)
}

// RegisterParams 注册参数
type RegisterParams struct {
	Name           string
	Email          string
	Phone          string
	MembershipDate *time.Time // 为空时使用当天
}

// UpdateParams 更新参数(nil表示不修改)
type UpdateParams struct {
	Name           *string
	Email          *string
	Phone          *string
	MembershipDate *time.Time
}

type service struct {
	repo      Repository
	txManager shared.TxManager
	clock     clock.Clock
}

// NewService 创建会员服务
func NewService(repo Repository, txManager shared.TxManager, clk clock.Clock) Service {
	return &service{
		repo:      repo,
		txManager: txManager,
		clock:     clk,
	}
}

// Register 会员注册
// 业务规则:
// 1. 姓名不能为空
// 2. 邮箱格式合法,且不区分大小写唯一
// 3. 手机号为10位数字
func (s *service) Register(ctx context.Context, params RegisterParams) (*Member, error) {
	// 1. 参数校验
	var details []string
	details = checkName(details, params.Name)
	details = checkEmail(details, params.Email)
	details = checkPhone(details, params.Phone)
	if len(details) > 0 {
		return nil, apperrors.Validation(details)
	}

	// 2. 入会日期默认当天
	now := s.clock.Now()
	joined := clock.DateOf(now)
	if params.MembershipDate != nil {
		joined = clock.DateOf(*params.MembershipDate)
	}
	m := NewMember(params.Name, params.Email, params.Phone, joined, now)

	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		// 3. 邮箱唯一性
		if err := s.ensureEmailFree(ctx, m.Email, 0); err != nil {
			return err
		}

		// 4. 持久化
		return s.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// UpdateMember 部分更新会员信息
func (s *service) UpdateMember(ctx context.Context, id uint, params UpdateParams) (*Member, error) {
	// 1. 校验传入的字段
	var details []string
	if params.Name != nil {
		details = checkName(details, *params.Name)
	}
	if params.Email != nil {
		details = checkEmail(details, *params.Email)
	}
	if params.Phone != nil {
		details = checkPhone(details, *params.Phone)
	}
	if len(details) > 0 {
		return nil, apperrors.Validation(details)
	}

	var updated *Member
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		// 2. 加锁查询
		m, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		// 3. 合并字段
		if params.Name != nil {
			m.Name = strings.TrimSpace(*params.Name)
		}
		if params.Phone != nil {
			m.Phone = strings.TrimSpace(*params.Phone)
		}
		if params.MembershipDate != nil {
			m.MembershipDate = clock.DateOf(*params.MembershipDate)
		}
		if params.Email != nil {
			email := NormalizeEmail(*params.Email)
			if email != m.Email {
				if err := s.ensureEmailFree(ctx, email, m.ID); err != nil {
					return err
				}
			}
			m.Email = email
		}

		// 4. 持久化
		m.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveMember 删除会员
func (s *service) RemoveMember(ctx context.Context, id uint) error {
	return s.txManager.Transaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		if m.HasLoans() {
			return ErrMemberHasLoans.
				WithField("member_id", id).
				WithField("borrowed_books", append([]uint{}, m.BorrowedBooks...))
		}

		return s.repo.Delete(ctx, id)
	})
}

// GetMember 获取会员详情
func (s *service) GetMember(ctx context.Context, id uint) (*Member, error) {
	return s.repo.FindByID(ctx, id)
}

// ListMembers 查询全部会员
func (s *service) ListMembers(ctx context.Context) ([]*Member, error) {
	return s.repo.List(ctx)
}

// ensureEmailFree 邮箱未被其他会员占用
func (s *service) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrEmailDuplicate.WithField("email", email)
	}
	return nil
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

func checkName(details []string, name string) []string {
	if strings.TrimSpace(name) == "" {
		details = append(details, "name: 不能为空")
	}
	return details
}

func checkEmail(details []string, email string) []string {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		details = append(details, "email: 邮箱格式不正确")
	}
	return details
}

func checkPhone(details []string, phone string) []string {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		details = append(details, "phone: 手机号必须为10位数字")
	}
	return details
}
