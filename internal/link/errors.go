package link

import (
	"errors"
	"fmt"
	"strings"
)

// 解码流程的哨兵错误。
var (
	// ErrEnvelope indicates the outer base64 wrapper could not be decoded.
	ErrEnvelope = errors.New("link: invalid subscription envelope")
	// ErrLinkDecode indicates a single link failed its scheme-specific decode.
	ErrLinkDecode = errors.New("link: decode failed")
	// ErrUnknownProtocol indicates no registered codec matches the link scheme.
	ErrUnknownProtocol = errors.New("link: unknown protocol")
)

// maxLinkInError 限制错误信息中回显的链接长度。
const maxLinkInError = 96

// EnvelopeError 表示订阅外层解码失败，整批数据不可用。
type EnvelopeError struct {
	Err error
}

// Error 实现 error 接口。
func (e *EnvelopeError) Error() string {
	if e.Err == nil {
		return ErrEnvelope.Error()
	}
	return fmt.Sprintf("%s: %v", ErrEnvelope.Error(), e.Err)
}

// Unwrap 返回底层原因。
func (e *EnvelopeError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrEnvelope) 成立。
func (e *EnvelopeError) Is(target error) bool { return target == ErrEnvelope }

// LinkDecodeError 表示单条链接解码失败，仅影响该链接。
type LinkDecodeError struct {
	Protocol ProtocolID
	Link     string
	Field    string // 出错字段，可能为空
	Err      error
}

// Error 实现 error 接口。
func (e *LinkDecodeError) Error() string {
	var b strings.Builder
	b.WriteString(ErrLinkDecode.Error())
	if e.Protocol != "" {
		b.WriteString(" [")
		b.WriteString(string(e.Protocol))
		b.WriteString("]")
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Link != "" {
		b.WriteString(" (link ")
		b.WriteString(truncate(e.Link, maxLinkInError))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap 返回底层原因。
func (e *LinkDecodeError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrLinkDecode) 成立。
func (e *LinkDecodeError) Is(target error) bool { return target == ErrLinkDecode }

// UnknownProtocolError 表示链接的协议没有对应的编解码器。
type UnknownProtocolError struct {
	Scheme string
	Link   string
}

// Error 实现 error 接口。
func (e *UnknownProtocolError) Error() string {
	return fmt.Sprintf("%s: %q is not implemented (signature %s)", ErrUnknownProtocol.Error(), e.Scheme, e.Signature())
}

// Is 使 errors.Is(err, ErrUnknownProtocol) 成立。
func (e *UnknownProtocolError) Is(target error) bool { return target == ErrUnknownProtocol }

// Signature renders the scheme prefix (including "://") as an escaped hex
// literal, the form used when registering a new codec.
func (e *UnknownProtocolError) Signature() string {
	return hexEscape(e.Scheme) + hexEscape(schemeSeparator)
}

func hexEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 4)
	for i := 0; i < len(s); i++ {
		fmt.Fprintf(&b, "\\x%02x", s[i])
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func decodeErr(protocol ProtocolID, link, field string, err error) *LinkDecodeError {
	return &LinkDecodeError{Protocol: protocol, Link: link, Field: field, Err: err}
}
