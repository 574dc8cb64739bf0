package member

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/member"
)

// RegisterUseCase 会员注册用例
// 设计说明:
// 1. Application层负责用例编排
// 2. 校验和邮箱唯一性由领域服务负责
type RegisterUseCase struct {
	memberService member.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(memberService member.Service) *RegisterUseCase {
	return &RegisterUseCase{memberService: memberService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name           string
	Email          string
	Phone          string
	MembershipDate *time.Time // 为空时使用当天
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*MemberResponse, error) {
	m, err := uc.memberService.Register(ctx, member.RegisterParams{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		MembershipDate: req.MembershipDate,
	})
	if err != nil {
		return nil, err
	}
	return NewMemberResponse(m), nil
}
