package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

var registerOnce sync.Once

// RegisterTagNames 校验错误使用json字段名(memberId而不是MemberID)
func RegisterTagNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// BindError 绑定错误 → 业务错误
// 1. 校验规则不满足 → ValidationFailed(列出全部字段)
// 2. 格式错误(非法JSON、类型不匹配) → InvalidParams
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, len(verrs))
		for i, fe := range verrs {
			details[i] = describe(fe)
		}
		return apperrors.Validation(details)
	}
	return apperrors.ErrBindError.WithDetails(err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: 不能为空", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s: 必须是[%s]之一", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: 不满足%s规则", fe.Field(), fe.Tag())
	}
}
