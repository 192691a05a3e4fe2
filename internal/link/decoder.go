package link

import (
	"errors"
	"log/slog"
	"strings"
)

const schemeSeparator = "://"

// codec 是注册表中的一项：前缀、协议标识与解码函数。
type codec struct {
	prefix   string
	protocol ProtocolID
	decode   func(body string) (ServerRecord, error)
}

// registry 的顺序即匹配顺序；前缀互不重叠，若将来出现重叠，先注册者优先。
var registry = []codec{
	{prefix: "ss://", protocol: ProtocolShadowsocks, decode: decodeShadowsocks},
	{prefix: "vmess://", protocol: ProtocolVMess, decode: decodeVMess},
	{prefix: "trojan://", protocol: ProtocolTrojan, decode: decodeTrojan},
	{prefix: "hysteria2://", protocol: ProtocolHysteria2, decode: decodeHysteria2},
	{prefix: "vless://", protocol: ProtocolVLESS, decode: decodeVLESS},
}

// Schemes returns the registered link prefixes in match order.
func Schemes() []string {
	out := make([]string, len(registry))
	for i, c := range registry {
		out[i] = c.prefix
	}
	return out
}

// Result 是批量解码的结果，Records 与 Failures 均保持输入顺序。
type Result struct {
	Records  []ServerRecord
	Failures []error
}

// Option 配置 Decoder。
type Option func(*Decoder)

// WithLogger 设置诊断日志输出。
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFailFast makes DecodeAll stop at the first LinkDecodeError instead of
// skipping the link. Unknown schemes never abort the batch.
func WithFailFast(enabled bool) Option {
	return func(d *Decoder) {
		d.failFast = enabled
	}
}

// Decoder 按前缀把链接分派给对应的编解码器。
type Decoder struct {
	logger   *slog.Logger
	failFast bool
}

// NewDecoder 创建解码器。
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode 解码单条链接。
func (d *Decoder) Decode(link string) (ServerRecord, error) {
	for _, c := range registry {
		if !strings.HasPrefix(link, c.prefix) {
			continue
		}
		body := strings.ReplaceAll(strings.TrimPrefix(link, c.prefix), "\r", "")
		rec, err := c.decode(body)
		if err != nil {
			var lde *LinkDecodeError
			if errors.As(err, &lde) {
				lde.Link = link
				return ServerRecord{}, lde
			}
			return ServerRecord{}, decodeErr(c.protocol, link, "", err)
		}
		return rec, nil
	}

	scheme, _, found := strings.Cut(link, schemeSeparator)
	if !found {
		scheme = strings.TrimSpace(link)
	}
	return ServerRecord{}, &UnknownProtocolError{Scheme: scheme, Link: link}
}

// DecodeAll 逐条解码，失败的链接记录后跳过；开启 fail-fast 时遇到第一个
// LinkDecodeError 即返回。
func (d *Decoder) DecodeAll(links []string) (*Result, error) {
	result := &Result{Records: make([]ServerRecord, 0, len(links))}
	for i, link := range links {
		if strings.TrimSpace(link) == "" {
			continue
		}

		rec, err := d.Decode(link)
		if err == nil {
			result.Records = append(result.Records, rec)
			continue
		}

		var unknown *UnknownProtocolError
		if errors.As(err, &unknown) {
			d.logger.Warn("protocol not implemented, link skipped",
				"line", i+1,
				"scheme", unknown.Scheme,
				"signature", unknown.Signature(),
			)
			result.Failures = append(result.Failures, err)
			continue
		}

		if d.failFast {
			return result, err
		}
		d.logger.Warn("link decode failed, link skipped", "line", i+1, "error", err)
		result.Failures = append(result.Failures, err)
	}
	return result, nil
}
