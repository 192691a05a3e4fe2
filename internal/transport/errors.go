// Package transport 负责拉取订阅内容。
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrInvalidSubscription 表示响应为空或无法按订阅信封解码。
	ErrInvalidSubscription = errors.New("transport: invalid subscription")
	// ErrHTTPStatus 表示服务端返回了非 2xx 状态码。
	ErrHTTPStatus = errors.New("transport: unexpected http status")
	// ErrTooLarge 表示响应体超过上限。
	ErrTooLarge = errors.New("transport: response too large")
)

// StatusError 携带非 2xx 的状态码。
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: GET %s: status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrHTTPStatus }

// ErrorCategory defines error classification for retry decisions.
type ErrorCategory int

const (
	// CategoryRetryable indicates a transient error that can be retried.
	CategoryRetryable ErrorCategory = iota
	// CategoryPermanent indicates a permanent error that should not be retried.
	CategoryPermanent
)

// String returns the string representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case CategoryRetryable:
		return "retryable"
	case CategoryPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ClassifyError 按 HTTP 状态码与网络错误类型判断是否值得重试。
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return CategoryRetryable
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrInvalidSubscription) || errors.Is(err, ErrTooLarge) {
		return CategoryPermanent
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode >= 500:
			return CategoryRetryable
		default:
			return CategoryPermanent
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return CategoryRetryable
	}
	// 其它错误（连接被重置等）按瞬时故障处理
	return CategoryRetryable
}

// IsRetryable returns true if the error is transient and can be retried.
func IsRetryable(err error) bool {
	return ClassifyError(err) == CategoryRetryable
}
