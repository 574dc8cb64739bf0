package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var resp Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHTTPStatus(t *testing.T) {
	tests := map[apperrors.Kind]int{
		apperrors.KindNotFound:         http.StatusNotFound,
		apperrors.KindUnavailable:      http.StatusConflict,
		apperrors.KindConflict:         http.StatusConflict,
		apperrors.KindDuplicateKey:     http.StatusConflict,
		apperrors.KindValidationFailed: http.StatusUnprocessableEntity,
		apperrors.KindInvalidParams:    http.StatusBadRequest,
		apperrors.KindUnauthorized:     http.StatusUnauthorized,
		apperrors.KindForbidden:        http.StatusForbidden,
		apperrors.KindInvariant:        http.StatusInternalServerError,
		apperrors.KindInternal:         http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
}

func TestSuccessAndCreated(t *testing.T) {
	w, resp := record(func(c *gin.Context) { Success(c, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)

	w, _ = record(func(c *gin.Context) { Created(c, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestError_AppError(t *testing.T) {
	err := apperrors.New(apperrors.ErrCodeNoActiveLoan, "没有进行中的借阅记录").
		WithField("member_id", 1).
		WithField("book_id", 2)

	w, resp := record(func(c *gin.Context) { Error(c, err) })

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.ErrCodeNoActiveLoan, resp.Code)
	assert.Equal(t, apperrors.KindConflict, resp.Kind)
	assert.Equal(t, float64(1), resp.Fields["member_id"])
	assert.Equal(t, float64(2), resp.Fields["book_id"])
	assert.Nil(t, resp.Data)
}

func TestError_Validation(t *testing.T) {
	w, resp := record(func(c *gin.Context) {
		Error(c, apperrors.Validation([]string{"name: 不能为空", "phone: 手机号必须为10位数字"}))
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, resp.Details, 2)
}

// TestError_InternalHidesCause 内部错误不返回底层信息
func TestError_InternalHidesCause(t *testing.T) {
	w, resp := record(func(c *gin.Context) { Error(c, errors.New("dial tcp 10.0.0.1:3306: refused")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, resp.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestSuccessWithList(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SuccessWithList(c, []int{1, 2, 3}, 3)

	var body struct {
		Data ListData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.Total)
	assert.Len(t, body.Data.List, 3)
}
