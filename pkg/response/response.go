package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Response 统一响应结构
// 设计说明:
// 1. Code是业务错误码,0表示成功
// 2. Message是用户友好的提示信息
// 3. Data是业务数据,成功时返回
// 4. Details/Fields仅在失败时出现(校验明细、相关ID)
type Response struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    interface{}            `json:"data,omitempty"`
	Kind    apperrors.Kind         `json:"kind,omitempty"`
	Details []string               `json:"details,omitempty"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// logger 记录内部错误,由main在启动时通过SetLogger注入
var logger = zap.NewNop()

// SetLogger 设置错误日志记录器
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Success 成功响应(Code=0表示成功)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应(201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应(自动处理AppError)
// 用法:
//
//	result, err := h.borrowUseCase.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 内部错误只进日志,不返回给客户端
	if appErr.Err != nil || appErr.Kind == apperrors.KindInternal || appErr.Kind == apperrors.KindInvariant {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("code", appErr.Code),
			zap.String("kind", string(appErr.Kind)),
			zap.Error(appErr),
		)
	}

	c.JSON(HTTPStatus(appErr.Kind), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Kind:    appErr.Kind,
		Details: appErr.Details,
		Fields:  appErr.Fields,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}

// HTTPStatus 错误类别 → HTTP状态码
func HTTPStatus(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUnavailable, apperrors.KindConflict, apperrors.KindDuplicateKey:
		return http.StatusConflict
	case apperrors.KindValidationFailed:
		return http.StatusUnprocessableEntity
	case apperrors.KindInvalidParams:
		return http.StatusBadRequest
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 列表响应结构
// =========================================

// ListData 列表数据封装(不分页)
type ListData struct {
	List  interface{} `json:"list"`
	Total int         `json:"total"`
}

// SuccessWithList 列表成功响应
func SuccessWithList(c *gin.Context, list interface{}, total int) {
	Success(c, &ListData{List: list, Total: total})
}
