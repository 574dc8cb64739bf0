package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 错误类别
// 说明:Code面向客户端展示,Kind面向调用方分支判断(如HTTP层映射状态码)
type Kind string

const (
	KindInternal         Kind = "Internal"
	KindNotFound         Kind = "NotFound"
	KindUnavailable      Kind = "Unavailable"
	KindConflict         Kind = "Conflict"
	KindDuplicateKey     Kind = "DuplicateKey"
	KindValidationFailed Kind = "ValidationFailed"
	KindInvalidParams    Kind = "InvalidParams"
	KindUnauthorized     Kind = "Unauthorized"
	KindForbidden        Kind = "Forbidden"
	// KindInvariant 内部不变量被破坏,属于程序缺陷,不是正常的业务失败
	KindInvariant Kind = "InvariantViolation"
)

// AppError 自定义应用错误
// 设计说明:
// 1. Code用于客户端判断错误类型(不要直接暴露HTTP状态码)
// 2. Message是用户友好的提示信息
// 3. Details列出所有校验失败项(ValidationFailed时不止第一条)
// 4. Fields携带相关ID(如member_id、book_id),便于调用方渲染
// 5. Err是内部错误,仅记录到日志,不返回给客户端
type AppError struct {
	Code    int                    `json:"code"`
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Details []string               `json:"details,omitempty"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较,这样预定义错误经过WithField/WithDetails复制后仍可用errors.Is判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Kind == e.Kind
}

// New 创建新的AppError,Kind由错误码推断
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindFromCode(code),
		Message: message,
	}
}

// NewKind 创建指定类别的AppError
func NewKind(kind Kind, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap 包装系统错误(如数据库错误、网络错误)
// 用途:将底层错误转换为业务错误,隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Kind:    KindInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Validation 创建校验失败错误,details为全部违规项
func Validation(details []string) *AppError {
	e := ErrValidationFailed.clone()
	e.Details = append([]string(nil), details...)
	return e
}

// Invariant 创建不变量破坏错误
func Invariant(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInvariantViolation,
		Kind:    KindInvariant,
		Message: "内部状态不一致",
		Err:     fmt.Errorf(format, args...),
	}
}

// WithField 返回附带字段的副本(预定义错误是共享变量,不能原地修改)
func (e *AppError) WithField(key string, value interface{}) *AppError {
	c := e.clone()
	if c.Fields == nil {
		c.Fields = make(map[string]interface{}, 2)
	}
	c.Fields[key] = value
	return c
}

// WithDetails 返回附带明细的副本
func (e *AppError) WithDetails(details ...string) *AppError {
	c := e.clone()
	c.Details = append(c.Details, details...)
	return c
}

// WithMessage 返回替换提示信息的副本
func (e *AppError) WithMessage(message string) *AppError {
	c := e.clone()
	c.Message = message
	return c
}

// WithErr 返回附带内部错误的副本
func (e *AppError) WithErr(err error) *AppError {
	c := e.clone()
	c.Err = err
	return c
}

func (e *AppError) clone() *AppError {
	c := *e
	if e.Details != nil {
		c.Details = append([]string(nil), e.Details...)
	}
	if e.Fields != nil {
		c.Fields = make(map[string]interface{}, len(e.Fields))
		for k, v := range e.Fields {
			c.Fields[k] = v
		}
	}
	return &c
}

// =========================================
// 错误码定义
// =========================================
// 规范:
// - 4xxxx: 客户端错误(参数错误、业务规则校验失败)
// - 5xxxx: 服务端错误(数据库异常、外部服务调用失败)

const (
	// 系统级错误码(50000-50099)
	ErrCodeInternal           = 50000 // 内部错误
	ErrCodeDatabaseError      = 50001 // 数据库错误
	ErrCodeRedisError         = 50002 // Redis错误
	ErrCodeInvariantViolation = 50003 // 不变量被破坏

	// 认证授权错误(40100-40399)
	ErrCodeUnauthorized  = 40100 // 缺少API Key
	ErrCodeInvalidAPIKey = 40300 // API Key无效

	// 资源错误(40400-40499)
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeMemberNotFound = 40401 // 会员不存在
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeLoanNotFound   = 40403 // 借阅记录不存在

	// 业务规则错误(40000-40099)
	ErrCodeBusinessError    = 40000 // 业务错误(通用)
	ErrCodeNoCopyAvailable  = 40001 // 无可借副本
	ErrCodeAlreadyBorrowed  = 40002 // 已借阅同一本书
	ErrCodeEmailDuplicate   = 40003 // 邮箱已存在
	ErrCodeISBNDuplicate    = 40004 // ISBN已存在
	ErrCodeNoActiveLoan     = 40005 // 没有进行中的借阅记录
	ErrCodeBookOnLoan       = 40006 // 图书在借,不能删除
	ErrCodeMemberHasLoans   = 40007 // 会员有未还图书,不能删除
	ErrCodeLoanClosed       = 40008 // 借阅记录已归还
	ErrCodeDuplicateEntry   = 40009 // 重复记录(通用)
	ErrCodeConflict         = 40010 // 状态冲突(通用)
	ErrCodeValidationFailed = 40020 // 业务校验失败

	// 参数错误(40900-40999)
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// kindFromCode 错误码 → 类别
func kindFromCode(code int) Kind {
	switch code {
	case ErrCodeUnauthorized:
		return KindUnauthorized
	case ErrCodeInvalidAPIKey:
		return KindForbidden
	case ErrCodeNotFound, ErrCodeMemberNotFound, ErrCodeBookNotFound, ErrCodeLoanNotFound:
		return KindNotFound
	case ErrCodeNoCopyAvailable:
		return KindUnavailable
	case ErrCodeAlreadyBorrowed, ErrCodeNoActiveLoan, ErrCodeBookOnLoan,
		ErrCodeMemberHasLoans, ErrCodeLoanClosed, ErrCodeConflict:
		return KindConflict
	case ErrCodeEmailDuplicate, ErrCodeISBNDuplicate, ErrCodeDuplicateEntry:
		return KindDuplicateKey
	case ErrCodeValidationFailed:
		return KindValidationFailed
	case ErrCodeInvalidParams, ErrCodeBindError:
		return KindInvalidParams
	case ErrCodeInvariantViolation:
		return KindInvariant
	default:
		return KindInternal
	}
}

// =========================================
// 预定义错误(避免每次都New)
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证
	ErrUnauthorized  = New(ErrCodeUnauthorized, "缺少API Key")
	ErrInvalidAPIKey = New(ErrCodeInvalidAPIKey, "API Key无效")

	// 资源不存在
	ErrNotFound = New(ErrCodeNotFound, "资源不存在")

	// 业务规则
	ErrConflict         = New(ErrCodeConflict, "状态冲突")
	ErrDuplicateEntry   = New(ErrCodeDuplicateEntry, "记录已存在")
	ErrValidationFailed = New(ErrCodeValidationFailed, "数据校验失败")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError(如果不是AppError则包装成Internal错误)
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// KindOf 返回错误类别,nil返回空字符串
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return GetAppError(err).Kind
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
