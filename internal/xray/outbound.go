package xray

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/creamcroissant/sub2xray/internal/link"
)

const (
	TagProxy  = "proxy"
	TagDirect = "direct"
	TagBlock  = "block"

	// userLevel 是 Xray 的连接策略等级，所有服务器统一使用 1。
	userLevel = 1
)

// outboundBuilder 根据记录生成某一协议的 settings。
type outboundBuilder struct {
	protocol string
	settings func(rec link.ServerRecord, port int) map[string]any
	stream   func(rec link.ServerRecord) *StreamSettings
}

// outboundBuilders 只覆盖可解码协议的子集；hysteria2 与 vless 没有映射。
var outboundBuilders = map[link.ProtocolID]outboundBuilder{
	link.ProtocolShadowsocks: {protocol: "shadowsocks", settings: shadowsocksSettings},
	link.ProtocolVMess:       {protocol: "vmess", settings: vmessSettings},
	link.ProtocolTrojan:      {protocol: "trojan", settings: trojanSettings, stream: trojanStream},
}

// Supported reports whether a record with this protocol can be assembled.
func Supported(protocol link.ProtocolID) bool {
	_, ok := outboundBuilders[protocol]
	return ok
}

// Outbounds 生成 proxy、direct、block 三个出站，proxy 始终在首位。
func (a *Assembler) Outbounds(rec link.ServerRecord) ([]Outbound, error) {
	if !rec.Protocol.Known() {
		return nil, &ConfigError{Field: "protocol", Message: fmt.Sprintf("%q is not a known protocol", rec.Protocol)}
	}
	builder, ok := outboundBuilders[rec.Protocol]
	if !ok {
		return nil, &UnsupportedProtocolError{Protocol: rec.Protocol}
	}

	port, err := validateRecord(rec)
	if err != nil {
		return nil, err
	}

	proxy := Outbound{
		Tag:      TagProxy,
		Protocol: builder.protocol,
		Settings: builder.settings(rec, port),
	}
	if builder.stream != nil {
		proxy.StreamSettings = builder.stream(rec)
	}

	return []Outbound{
		proxy,
		{
			Tag:      TagDirect,
			Protocol: "freedom",
			Settings: map[string]any{},
		},
		{
			Tag:      TagBlock,
			Protocol: "blackhole",
			Settings: map[string]any{
				"response": map[string]any{"type": "http"},
			},
		},
	}, nil
}

func validateRecord(rec link.ServerRecord) (int, error) {
	if strings.TrimSpace(rec.UUID) == "" {
		return 0, &ConfigError{Field: "uuid", Message: "missing value"}
	}
	if strings.TrimSpace(rec.Addr) == "" {
		return 0, &ConfigError{Field: "addr", Message: "missing value"}
	}
	if rec.Port == "" {
		return 0, &ConfigError{Field: "port", Message: "missing value"}
	}
	port, err := strconv.Atoi(rec.Port)
	if err != nil {
		return 0, &ConfigError{Field: "port", Message: fmt.Sprintf("%q is not a number", rec.Port)}
	}
	if port <= 0 || port > maxPort {
		return 0, &ConfigError{Field: "port", Message: fmt.Sprintf("%d out of range", port)}
	}
	return port, nil
}

func shadowsocksSettings(rec link.ServerRecord, port int) map[string]any {
	return map[string]any{
		"servers": []map[string]any{{
			"address":  rec.Addr,
			"method":   rec.Method,
			"ota":      false,
			"password": rec.UUID,
			"port":     port,
			"level":    userLevel,
		}},
	}
}

func vmessSettings(rec link.ServerRecord, port int) map[string]any {
	return map[string]any{
		"vnext": []map[string]any{{
			"address": rec.Addr,
			"port":    port,
			"users": []map[string]any{{
				"id":       rec.UUID,
				"alterId":  0,
				"email":    "t@t.tt",
				"security": "auto",
			}},
		}},
	}
}

func trojanSettings(rec link.ServerRecord, port int) map[string]any {
	server := map[string]any{
		"address":  rec.Addr,
		"password": rec.UUID,
		"port":     port,
		"level":    userLevel,
	}
	if rec.Method != "" {
		server["method"] = rec.Method
	}
	return map[string]any{"servers": []map[string]any{server}}
}

// trojanStream 在记录带有 TLS 相关字段时补充 streamSettings。
func trojanStream(rec link.ServerRecord) *StreamSettings {
	serverName := rec.Option("sni")
	if serverName == "" {
		serverName = rec.Option("peer")
	}
	insecure := rec.BoolOption("allowInsecure")
	if serverName == "" && !insecure {
		return nil
	}
	return &StreamSettings{
		Network:  "tcp",
		Security: "tls",
		TLSSettings: &TLSSettings{
			ServerName:    serverName,
			AllowInsecure: insecure,
		},
	}
}
