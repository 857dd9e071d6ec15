package repository

import (
	"errors"
	"fmt"
)

// 通用的存储库错误
var (
	// ErrPlacementRejected 表示服务端拒绝了放置请求（例如仍在冷却中）
	ErrPlacementRejected = errors.New("repository: placement rejected")
	// ErrUnexpectedResponse 表示响应状态码或格式不符合预期
	ErrUnexpectedResponse = errors.New("repository: unexpected response")
)

// RejectionError 携带服务端返回的拒绝原因。
type RejectionError struct {
	StatusCode int
	Detail     string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("placement rejected (status %d): %s", e.StatusCode, e.Detail)
}

// Is 让 errors.Is(err, ErrPlacementRejected) 成立。
func (e *RejectionError) Is(target error) bool {
	return target == ErrPlacementRejected
}
