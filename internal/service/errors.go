package service

import (
	"errors"
	"fmt"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrTagNotFound     = errors.New("tag not found")
	ErrVerifyMismatch  = errors.New("verification phrase mismatch")
)

// FieldError 表示字段级校验错误，handler 层据此内联展示给提交者。
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AsFieldError unwraps err into a *FieldError when possible.
func AsFieldError(err error) (*FieldError, bool) {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr, true
	}
	return nil, false
}
