package member

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/member"
)

// UpdateMemberUseCase 更新会员用例
type UpdateMemberUseCase struct {
	memberService member.Service
}

// NewUpdateMemberUseCase 创建更新会员用例
func NewUpdateMemberUseCase(memberService member.Service) *UpdateMemberUseCase {
	return &UpdateMemberUseCase{memberService: memberService}
}

// UpdateMemberRequest 更新请求(nil表示不修改)
type UpdateMemberRequest struct {
	Name           *string
	Email          *string
	Phone          *string
	MembershipDate *time.Time
}

// Execute 执行更新
func (uc *UpdateMemberUseCase) Execute(ctx context.Context, id uint, req UpdateMemberRequest) (*MemberResponse, error) {
	m, err := uc.memberService.UpdateMember(ctx, id, member.UpdateParams{
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

// DeleteMemberUseCase 删除会员用例
type DeleteMemberUseCase struct {
	memberService member.Service
}

// NewDeleteMemberUseCase 创建删除会员用例
func NewDeleteMemberUseCase(memberService member.Service) *DeleteMemberUseCase {
	return &DeleteMemberUseCase{memberService: memberService}
}

// Execute 执行删除,返回被删除的会员
func (uc *DeleteMemberUseCase) Execute(ctx context.Context, id uint) (*MemberResponse, error) {
	m, err := uc.memberService.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.memberService.RemoveMember(ctx, id); err != nil {
		return nil, err
	}
	return NewMemberResponse(m), nil
}

// GetMemberUseCase 会员详情用例
type GetMemberUseCase struct {
	memberService member.Service
}

// NewGetMemberUseCase 创建会员详情用例
func NewGetMemberUseCase(memberService member.Service) *GetMemberUseCase {
	return &GetMemberUseCase{memberService: memberService}
}

// Execute 查询会员详情
func (uc *GetMemberUseCase) Execute(ctx context.Context, id uint) (*MemberResponse, error) {
	m, err := uc.memberService.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewMemberResponse(m), nil
}

// ListMembersUseCase 会员列表用例
type ListMembersUseCase struct {
	memberService member.Service
}

// NewListMembersUseCase 创建会员列表用例
func NewListMembersUseCase(memberService member.Service) *ListMembersUseCase {
	return &ListMembersUseCase{memberService: memberService}
}

// Execute 查询全部会员
func (uc *ListMembersUseCase) Execute(ctx context.Context) ([]*MemberResponse, error) {
	members, err := uc.memberService.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*MemberResponse, len(members))
	for i, m := range members {
		list[i] = NewMemberResponse(m)
	}
	return list, nil
}
