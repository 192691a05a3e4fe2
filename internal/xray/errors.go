package xray

import (
	"errors"
	"fmt"

	"github.com/creamcroissant/sub2xray/internal/link"
)

// 配置组装的哨兵错误。
var (
	// ErrConfig indicates an invalid port or a structurally incomplete record.
	ErrConfig = errors.New("xray: invalid config input")
	// ErrUnsupportedProtocol indicates the record's protocol has no outbound mapping.
	ErrUnsupportedProtocol = errors.New("xray: unsupported outbound protocol")
)

// ConfigError 表示组装输入不合法，附带出错字段。
type ConfigError struct {
	Field   string
	Message string
}

// Error 实现 error 接口。
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrConfig.Error(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrConfig.Error(), e.Message)
}

// Unwrap 返回基础错误类型。
func (e *ConfigError) Unwrap() error { return ErrConfig }

// UnsupportedProtocolError 表示记录可以解码但无法生成出站。
type UnsupportedProtocolError struct {
	Protocol link.ProtocolID
}

// Error 实现 error 接口。
func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedProtocol.Error(), string(e.Protocol))
}

// Unwrap 返回基础错误类型。
func (e *UnsupportedProtocolError) Unwrap() error { return ErrUnsupportedProtocol }
