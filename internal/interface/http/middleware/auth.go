package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// APIKeyMiddleware 共享密钥认证中间件
// 设计说明:
// 1. 启动时只保留密钥的bcrypt哈希,内存中不存明文
// 2. 缺少Header → 401,密钥错误 → 403
type APIKeyMiddleware struct {
	header string
	hash   []byte
}

// NewAPIKeyMiddleware 创建认证中间件
// header为空时使用x-api-key
func NewAPIKeyMiddleware(apiKey, header string) (*APIKeyMiddleware, error) {
	if header == "" {
		header = "x-api-key"
	}
	// bcrypt只处理前72字节
	if len(apiKey) > 72 {
		return nil, fmt.Errorf("API Key长度不能超过72字节")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("生成API Key哈希失败: %w", err)
	}
	return &APIKeyMiddleware{header: header, hash: hash}, nil
}

// RequireAPIKey 要求请求携带正确的API Key
// 使用方式:
//
//	v1 := r.Group("/api/v1")
//	v1.Use(apiKey.RequireAPIKey())
func (m *APIKeyMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(m.header)
		if key == "" {
			response.Error(c, apperrors.ErrUnauthorized.WithDetails("请在"+m.header+"头中提供API Key"))
			c.Abort()
			return
		}

		if bcrypt.CompareHashAndPassword(m.hash, []byte(key)) != nil {
			response.Error(c, apperrors.ErrInvalidAPIKey)
			c.Abort()
			return
		}

		c.Next()
	}
}
