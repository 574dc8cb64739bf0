package member

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 会员领域错误定义
var (
	// ErrMemberNotFound 会员不存在
	ErrMemberNotFound = apperrors.New(apperrors.ErrCodeMemberNotFound, "会员不存在")

	// ErrEmailDuplicate 邮箱已存在
	ErrEmailDuplicate = apperrors.New(apperrors.ErrCodeEmailDuplicate, "邮箱已被注册")

	// ErrAlreadyBorrowed 已借阅同一本书
	ErrAlreadyBorrowed = apperrors.New(apperrors.ErrCodeAlreadyBorrowed, "会员已借阅该书")

	// ErrNotBorrowing 会员未借阅该书
	ErrNotBorrowing = apperrors.New(apperrors.ErrCodeNoActiveLoan, "会员未借阅该书")

	// ErrMemberHasLoans 有未还图书,不能删除
	ErrMemberHasLoans = apperrors.New(apperrors.ErrCodeMemberHasLoans, "会员有未归还的图书,不能删除")
)
