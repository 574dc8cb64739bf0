package handler

import (
	"github.com/gin-gonic/gin"

	applending "github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// LendingHandler 借还HTTP处理器
type LendingHandler struct {
	borrowBookUseCase *applending.BorrowBookUseCase
	returnBookUseCase *applending.ReturnBookUseCase
	listLoansUseCase  *applending.ListLoansUseCase
}

// NewLendingHandler 创建借还处理器
func NewLendingHandler(
	borrowBookUseCase *applending.BorrowBookUseCase,
	returnBookUseCase *applending.ReturnBookUseCase,
	listLoansUseCase *applending.ListLoansUseCase,
) *LendingHandler {
	return &LendingHandler{
		borrowBookUseCase: borrowBookUseCase,
		returnBookUseCase: returnBookUseCase,
		listLoansUseCase:  listLoansUseCase,
	}
}

// Borrow 借书
// @Summary      借书
// @Description  扣减可借数量、创建借阅记录(应还日期=借出日期+借期)
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body dto.LendingRequest true "会员ID与图书ID"
// @Success      201 {object} response.Response{data=applending.BorrowBookResponse}
// @Failure      404 {object} response.Response "会员或图书不存在"
// @Failure      409 {object} response.Response "无可借副本或已借阅同一本书"
// @Failure      422 {object} response.Response "数据校验失败"
// @Router       /api/v1/borrow [post]
func (h *LendingHandler) Borrow(c *gin.Context) {
	var req dto.LendingRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.borrowBookUseCase.Execute(c.Request.Context(), applending.BorrowBookRequest{
		MemberID: req.MemberID,
		BookID:   req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Return 还书
// @Summary      还书
// @Description  关闭借阅记录,返回逾期天数与罚金(应还日期当天归还不算逾期)
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body dto.LendingRequest true "会员ID与图书ID"
// @Success      200 {object} response.Response{data=applending.ReturnBookResponse}
// @Failure      404 {object} response.Response "会员或图书不存在"
// @Failure      409 {object} response.Response "没有进行中的借阅记录"
// @Failure      422 {object} response.Response "数据校验失败"
// @Router       /api/v1/return [post]
func (h *LendingHandler) Return(c *gin.Context) {
	var req dto.LendingRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	result, err := h.returnBookUseCase.Execute(c.Request.Context(), applending.ReturnBookRequest{
		MemberID: req.MemberID,
		BookID:   req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListLoans 借阅记录列表
// @Summary      借阅记录列表
// @Description  附带会员姓名和书名(已删除时为Unknown),按记录ID升序
// @Tags         借阅
// @Produce      json
// @Security     ApiKeyAuth
// @Param        memberId query int false "会员ID"
// @Param        bookId query int false "图书ID"
// @Param        status query string false "active | returned"
// @Success      200 {object} response.Response{data=response.ListData{list=[]applending.LoanItem}}
// @Failure      422 {object} response.Response "数据校验失败"
// @Router       /api/v1/loans [get]
func (h *LendingHandler) ListLoans(c *gin.Context) {
	var query dto.ListLoansQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	list, err := h.listLoansUseCase.Execute(c.Request.Context(), applending.ListLoansRequest{
		MemberID: query.MemberID,
		BookID:   query.BookID,
		Status:   query.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithList(c, list, len(list))
}
