package dto

// LendingRequest 借书/还书请求(JSON或表单)
type LendingRequest struct {
	MemberID uint `json:"memberId" form:"memberId" binding:"required" example:"1"`
	BookID   uint `json:"bookId" form:"bookId" binding:"required" example:"2"`
}

// ListLoansQuery 借阅记录查询参数
type ListLoansQuery struct {
	MemberID uint   `form:"memberId"`
	BookID   uint   `form:"bookId"`
	Status   string `form:"status" binding:"omitempty,oneof=active returned"`
}
