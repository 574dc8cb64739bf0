package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKindFromCode 错误码 → 类别
func TestKindFromCode(t *testing.T) {
	tests := []struct {
		code int
		want Kind
	}{
		{ErrCodeMemberNotFound, KindNotFound},
		{ErrCodeBookNotFound, KindNotFound},
		{ErrCodeNoCopyAvailable, KindUnavailable},
		{ErrCodeAlreadyBorrowed, KindConflict},
		{ErrCodeNoActiveLoan, KindConflict},
		{ErrCodeBookOnLoan, KindConflict},
		{ErrCodeMemberHasLoans, KindConflict},
		{ErrCodeEmailDuplicate, KindDuplicateKey},
		{ErrCodeISBNDuplicate, KindDuplicateKey},
		{ErrCodeValidationFailed, KindValidationFailed},
		{ErrCodeBindError, KindInvalidParams},
		{ErrCodeUnauthorized, KindUnauthorized},
		{ErrCodeInvalidAPIKey, KindForbidden},
		{ErrCodeInvariantViolation, KindInvariant},
		{ErrCodeDatabaseError, KindInternal},
		{12345, KindInternal},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.code, "x").Kind)
		})
	}
}

// TestWithField_DoesNotMutateShared 预定义错误是共享变量,With*必须返回副本
func TestWithField_DoesNotMutateShared(t *testing.T) {
	base := New(ErrCodeBookNotFound, "图书不存在")

	e1 := base.WithField("book_id", uint(1))
	e2 := base.WithField("book_id", uint(2)).WithDetails("a")

	assert.Nil(t, base.Fields)
	assert.Nil(t, base.Details)
	assert.Equal(t, uint(1), e1.Fields["book_id"])
	assert.Equal(t, uint(2), e2.Fields["book_id"])
	assert.Equal(t, []string{"a"}, e2.Details)
	assert.Empty(t, e1.Details)
}

// TestIs 复制后的错误仍能用errors.Is匹配预定义错误
func TestIs(t *testing.T) {
	base := New(ErrCodeNoActiveLoan, "没有进行中的借阅记录")
	derived := base.WithField("member_id", 1).WithMessage("其他提示")

	assert.True(t, errors.Is(derived, base))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", derived), base))
	assert.False(t, errors.Is(derived, ErrConflict))
}

// TestValidation 全部违规项都保留
func TestValidation(t *testing.T) {
	details := []string{"title: 不能为空", "copies: 至少为1"}
	err := Validation(details)
	details[0] = "changed"

	assert.Equal(t, KindValidationFailed, err.Kind)
	assert.Equal(t, ErrCodeValidationFailed, err.Code)
	assert.Equal(t, []string{"title: 不能为空", "copies: 至少为1"}, err.Details)
	assert.Nil(t, ErrValidationFailed.Details)
	assert.Contains(t, err.Error(), "copies: 至少为1")
}

// TestInvariant 不变量错误单独归类
func TestInvariant(t *testing.T) {
	err := Invariant("book %d available %d", 3, -1)

	assert.Equal(t, KindInvariant, err.Kind)
	assert.True(t, IsKind(err, KindInvariant))
	assert.Contains(t, err.Error(), "book 3 available -1")
}

// TestWrap 底层错误保留在链上
func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(cause, "查询%s失败", "图书")

	assert.Equal(t, KindInternal, err.Kind)
	assert.Equal(t, "查询图书失败", err.Message)
	assert.ErrorIs(t, err, cause)
}

// TestGetAppError 非AppError包装为Internal
func TestGetAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := GetAppError(plain)
	require.NotNil(t, appErr)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.ErrorIs(t, appErr, plain)

	nf := New(ErrCodeMemberNotFound, "会员不存在")
	assert.Same(t, nf, GetAppError(fmt.Errorf("ctx: %w", nf)))

	assert.Equal(t, Kind(""), KindOf(nil))
	assert.False(t, IsKind(nil, KindInternal))
	assert.False(t, IsAppError(plain))
	assert.True(t, IsAppError(nf))
}
