package dto

// RegisterMemberRequest HTTP会员注册请求
type RegisterMemberRequest struct {
	Name           string `json:"name" form:"name" example:"Alice Walker"`
	Email          string `json:"email" form:"email" example:"alice@example.com"`
	Phone          string `json:"phone" form:"phone" example:"5551234567"`
	MembershipDate string `json:"membershipDate" form:"membershipDate" example:"2024-03-01"` // 可选,默认当天
}

// UpdateMemberRequest HTTP更新会员请求(未传的字段不修改)
// borrowedBooks不可直接修改
type UpdateMemberRequest struct {
	Name           *string `json:"name" form:"name"`
	Email          *string `json:"email" form:"email"`
	Phone          *string `json:"phone" form:"phone"`
	MembershipDate *string `json:"membershipDate" form:"membershipDate"`
}
