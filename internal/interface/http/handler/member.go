package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	applending "github.com/xiebiao/library/internal/application/lending"
	appmember "github.com/xiebiao/library/internal/application/member"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// MemberHandler 会员HTTP处理器
type MemberHandler struct {
	registerUseCase     *appmember.RegisterUseCase
	updateMemberUseCase *appmember.UpdateMemberUseCase
	deleteMemberUseCase *appmember.DeleteMemberUseCase
	getMemberUseCase    *appmember.GetMemberUseCase
	listMembersUseCase  *appmember.ListMembersUseCase
	listLoansUseCase    *applending.ListLoansUseCase
}

// NewMemberHandler 创建会员处理器
func NewMemberHandler(
	registerUseCase *appmember.RegisterUseCase,
	updateMemberUseCase *appmember.UpdateMemberUseCase,
	deleteMemberUseCase *appmember.DeleteMemberUseCase,
	getMemberUseCase *appmember.GetMemberUseCase,
	listMembersUseCase *appmember.ListMembersUseCase,
	listLoansUseCase *applending.ListLoansUseCase,
) *MemberHandler {
	return &MemberHandler{
		registerUseCase:     registerUseCase,
		updateMemberUseCase: updateMemberUseCase,
		deleteMemberUseCase: deleteMemberUseCase,
		getMemberUseCase:    getMemberUseCase,
		listMembersUseCase:  listMembersUseCase,
		listLoansUseCase:    listLoansUseCase,
	}
}

// Register 会员注册
// @Summary      会员注册
// @Description  邮箱不区分大小写唯一,手机号为10位数字,入会日期默认当天
// @Tags         会员
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body dto.RegisterMemberRequest true "会员信息"
// @Success      201 {object} response.Response{data=appmember.MemberResponse}
// @Failure      409 {object} response.Response "邮箱已存在"
// @Failure      422 {object} response.Response "数据校验失败"
// @Router       /api/v1/members [post]
func (h *MemberHandler) Register(c *gin.Context) {
	var req dto.RegisterMemberRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	var joined *time.Time
	if strings.TrimSpace(req.MembershipDate) != "" {
		d, err := parseMembershipDate(req.MembershipDate)
		if err != nil {
			response.Error(c, err)
			return
		}
		joined = &d
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appmember.RegisterRequest{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		MembershipDate: joined,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateMember 更新会员
// @Summary      更新会员
// @Description  部分更新,未传的字段不修改
// @Tags         会员
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id path int true "会员ID"
// @Param        request body dto.UpdateMemberRequest true "需要修改的字段"
// @Success      200 {object} response.Response{data=appmember.MemberResponse}
// @Failure      404 {object} response.Response "会员不存在"
// @Failure      409 {object} response.Response "邮箱已存在"
// @Failure      422 {object} response.Response "数据校验失败"
// @Router       /api/v1/members/{id} [put]
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	var joined *time.Time
	if req.MembershipDate != nil {
		d, err := parseMembershipDate(*req.MembershipDate)
		if err != nil {
			response.Error(c, err)
			return
		}
		joined = &d
	}

	result, err := h.updateMemberUseCase.Execute(c.Request.Context(), id, appmember.UpdateMemberRequest{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		MembershipDate: joined,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteMember 删除会员
// @Summary      删除会员
// @Description  有未还图书时不能删除
// @Tags         会员
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id path int true "会员ID"
// @Success      200 {object} response.Response{data=appmember.MemberResponse}
// @Failure      404 {object} response.Response "会员不存在"
// @Failure      409 {object} response.Response "会员有未还图书"
// @Router       /api/v1/members/{id} [delete]
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.deleteMemberUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetMember 会员详情
// @Summary      会员详情
// @Tags         会员
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id path int true "会员ID"
// @Success      200 {object} response.Response{data=appmember.MemberResponse}
// @Failure      404 {object} response.Response "会员不存在"
// @Router       /api/v1/members/{id} [get]
func (h *MemberHandler) GetMember(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.getMemberUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListMembers 会员列表
// @Summary      会员列表
// @Tags         会员
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200 {object} response.Response{data=response.ListData{list=[]appmember.MemberResponse}}
// @Router       /api/v1/members [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	list, err := h.listMembersUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithList(c, list, len(list))
}

// ListMemberLoans 会员借阅历史
// @Summary      会员借阅历史
// @Tags         会员
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id path int true "会员ID"
// @Param        status query string false "active | returned"
// @Success      200 {object} response.Response{data=response.ListData{list=[]applending.LoanItem}}
// @Failure      404 {object} response.Response "会员不存在"
// @Router       /api/v1/members/{id}/loans [get]
func (h *MemberHandler) ListMemberLoans(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var query dto.ListLoansQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	list, err := h.listLoansUseCase.Execute(c.Request.Context(), applending.ListLoansRequest{
		MemberID:      id,
		Status:        query.Status,
		RequireMember: true,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithList(c, list, len(list))
}

// parseMembershipDate 解析入会日期(YYYY-MM-DD)
func parseMembershipDate(s string) (time.Time, error) {
	d, err := clock.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperrors.Validation([]string{"membershipDate: 日期格式必须为YYYY-MM-DD"})
	}
	return d, nil
}
