package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrRecordNotFound 借阅记录不存在
	ErrRecordNotFound = apperrors.New(apperrors.ErrCodeLoanNotFound, "借阅记录不存在")

	// ErrNoActiveLoan 没有进行中的借阅记录(归还时)
	ErrNoActiveLoan = apperrors.New(apperrors.ErrCodeNoActiveLoan, "没有进行中的借阅记录")

	// ErrRecordClosed 记录已归还,不可修改
	ErrRecordClosed = apperrors.New(apperrors.ErrCodeLoanClosed, "借阅记录已归还")
)
