package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrNoCopyAvailable 无可借副本
	ErrNoCopyAvailable = apperrors.New(apperrors.ErrCodeNoCopyAvailable, "该书暂无可借副本")

	// ErrBookOnLoan 图书在借,不能删除
	ErrBookOnLoan = apperrors.New(apperrors.ErrCodeBookOnLoan, "图书存在未归还的借阅记录,不能删除")
)
