package book

import (
	"fmt"
	"strings"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// validator 收集所有校验失败项,最后统一返回
type validator struct {
	currentYear int
	details     []string
}

func (v *validator) add(detail string) {
	v.details = append(v.details, detail)
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field + ": 不能为空")
	}
}

func (v *validator) publishYear(year int) {
	if year < MinPublishYear || year > v.currentYear {
		v.add(fmt.Sprintf("publishYear: 必须在%d到%d之间", MinPublishYear, v.currentYear))
	}
}

func (v *validator) copies(n int) {
	if n < 1 {
		v.add("copies: 至少为1")
	}
}

func (v *validator) err() error {
	if len(v.details) == 0 {
		return nil
	}
	return apperrors.Validation(v.details)
}
