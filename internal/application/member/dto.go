package member

import (
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/pkg/clock"
)

// MemberResponse 会员响应DTO
type MemberResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	MembershipDate string `json:"membershipDate"`
	BorrowedBooks  []uint `json:"borrowedBooks"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// NewMemberResponse 领域实体 → 响应DTO
// BorrowedBooks为空时输出[]而不是null
func NewMemberResponse(m *member.Member) *MemberResponse {
	borrowed := make([]uint, len(m.BorrowedBooks))
	copy(borrowed, m.BorrowedBooks)
	return &MemberResponse{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		MembershipDate: clock.FormatDate(m.MembershipDate),
		BorrowedBooks:  borrowed,
		CreatedAt:      m.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:      m.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
