// Package xray assembles Xray client configuration documents from a decoded
// server record and a routing rule set.
package xray

// ClientConfig 是最终写出的客户端配置文档。
type ClientConfig struct {
	Inbounds  []Inbound  `json:"inbounds"`
	Outbounds []Outbound `json:"outbounds"`
	Routing   Routing    `json:"routing"`
}

// Inbound 描述一个本地监听。
type Inbound struct {
	Tag      string          `json:"tag"`
	Port     int             `json:"port"`
	Listen   string          `json:"listen"`
	Protocol string          `json:"protocol"`
	Settings InboundSettings `json:"settings"`
}

// InboundSettings 目前只携带 UDP 开关。
type InboundSettings struct {
	UDP bool `json:"udp"`
}

// Outbound 描述一个出口。Settings 的形状随协议变化。
type Outbound struct {
	Tag            string          `json:"tag"`
	Protocol       string          `json:"protocol"`
	Settings       map[string]any  `json:"settings"`
	StreamSettings *StreamSettings `json:"streamSettings,omitempty"`
}

// StreamSettings 是出站的传输层设置。
type StreamSettings struct {
	Network     string       `json:"network"`
	Security    string       `json:"security"`
	TLSSettings *TLSSettings `json:"tlsSettings,omitempty"`
}

// TLSSettings 是 TLS 握手参数。
type TLSSettings struct {
	ServerName    string `json:"serverName,omitempty"`
	AllowInsecure bool   `json:"allowInsecure"`
}

// Routing 是路由表，规则按首个匹配生效。
type Routing struct {
	DomainStrategy string        `json:"domainStrategy"`
	Rules          []RoutingRule `json:"rules"`
}

// RoutingRule 是一条 field 类型的路由规则。
type RoutingRule struct {
	Type        string   `json:"type"`
	OutboundTag string   `json:"outboundTag"`
	Domain      []string `json:"domain,omitempty"`
	Source      []string `json:"source,omitempty"`
	IP          []string `json:"ip,omitempty"`
	Port        string   `json:"port,omitempty"`
}
