package link

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errNotUTF8 = errors.New("decoded payload is not valid UTF-8")

// DecodeEnvelope 解开订阅的 base64 外层，返回按原顺序排列的链接。
func DecodeEnvelope(raw []byte) ([]string, error) {
	text, err := decodeBase64(string(raw))
	if err != nil {
		return nil, &EnvelopeError{Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// decodeBase64 宽松地解码 base64：忽略空白、允许缺失填充、兼容 URL 安全字母表。
// 解码结果必须是合法 UTF-8。
func decodeBase64(s string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '-':
			return '+'
		case '_':
			return '/'
		}
		return r
	}, s)
	cleaned = strings.TrimRight(cleaned, "=")

	decoded, err := base64.RawStdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errNotUTF8
	}
	return string(decoded), nil
}
