package xray

import (
	"log/slog"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/rules"
)

// DefaultHTTPPort 是 HTTP 监听的默认端口，SOCKS 使用其后一个端口。
const DefaultHTTPPort = 10809

// Options 控制本地监听。
type Options struct {
	AllowLAN bool
	HTTPPort int
}

// Assembler 把一条服务器记录和规则集组装成客户端配置。无内部状态，可并发使用。
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler 创建组装器。
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Assemble 生成完整配置文档；任一部分失败都不会返回半成品。
func (a *Assembler) Assemble(rec link.ServerRecord, rs rules.RuleSet, opts Options) (*ClientConfig, error) {
	inbounds, err := a.Inbounds(opts.AllowLAN, opts.HTTPPort)
	if err != nil {
		return nil, err
	}
	outbounds, err := a.Outbounds(rec)
	if err != nil {
		return nil, err
	}
	routing := a.Routing(rs)

	a.logger.Debug("client config assembled",
		"protocol", rec.Protocol,
		"note", rec.Note,
		"http_port", opts.HTTPPort,
		"allow_lan", opts.AllowLAN,
		"rules", len(routing.Rules),
	)
	return &ClientConfig{
		Inbounds:  inbounds,
		Outbounds: outbounds,
		Routing:   routing,
	}, nil
}
