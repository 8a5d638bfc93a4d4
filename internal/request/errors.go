package request

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFoundOrNotPending 申请单不存在或已被审批（终态）。
	// 两种情况对调用方不可区分：审批竞态的失败方也会收到它。
	ErrNotFoundOrNotPending = errors.New("request not found or not pending")
	// ErrVehicleUnavailable 指定车辆不存在或不可分配。
	ErrVehicleUnavailable = errors.New("vehicle not found or not available")
	// ErrNotFound 申请单不存在（只读查询场景）。
	ErrNotFound = errors.New("request not found")
)

// FieldError 单个字段的校验失败信息。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 入参校验失败，聚合所有字段错误，由 API 层映射为 400。
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError 便于调用方用 errors.As 拿到字段明细。
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
