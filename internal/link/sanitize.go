package link

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// pictographs 覆盖表情、杂项符号、交通地图符号与国旗区域指示符。
var pictographs = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
	},
}

// SanitizeNote removes pictographic code points and leaves everything else,
// including surrounding spaces, untouched.
func SanitizeNote(s string) string {
	out, _, err := transform.String(runes.Remove(runes.In(pictographs)), s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeEscapedNote 处理 JSON 字符串字面量（含引号）：先删除 UTF-16 代理项转义，
// 再解码为文本；结果不是合法 UTF-8 时返回空串。
func SanitizeEscapedNote(rawLiteral string) string {
	text := gjson.Parse(stripSurrogateEscapes(rawLiteral)).String()
	if !utf8.ValidString(text) {
		return ""
	}
	return text
}

// stripSurrogateEscapes 删除 \uD800-\uDFFF 转义；"\\" 之后的 u 是普通字符，不算转义。
func stripSurrogateEscapes(lit string) string {
	var b strings.Builder
	b.Grow(len(lit))
	for i := 0; i < len(lit); i++ {
		if lit[i] != '\\' || i+1 >= len(lit) {
			b.WriteByte(lit[i])
			continue
		}
		if isSurrogateEscape(lit[i:]) {
			i += 5
			continue
		}
		b.WriteString(lit[i : i+2])
		i++
	}
	return b.String()
}

func isSurrogateEscape(s string) bool {
	if len(s) < 6 || s[1] != 'u' || (s[2] != 'd' && s[2] != 'D') {
		return false
	}
	if !strings.ContainsRune("89abcdefABCDEF", rune(s[3])) {
		return false
	}
	return isHex(s[4]) && isHex(s[5])
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
