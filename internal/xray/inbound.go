package xray

import "fmt"

const (
	listenAll      = "0.0.0.0"
	listenLoopback = "127.0.0.1"
	maxPort        = 65535
)

// Inbounds 生成固定的两个本地监听：basePort 上的 HTTP 与 basePort+1 上的 SOCKS。
func (a *Assembler) Inbounds(allowLAN bool, basePort int) ([]Inbound, error) {
	if basePort < 0 || basePort >= maxPort {
		return nil, &ConfigError{
			Field:   "http_port",
			Message: fmt.Sprintf("%d out of range [0, %d)", basePort, maxPort),
		}
	}

	listen := listenLoopback
	if allowLAN {
		listen = listenAll
	}

	return []Inbound{
		{
			Tag:      "http",
			Port:     basePort,
			Listen:   listen,
			Protocol: "http",
			Settings: InboundSettings{UDP: false},
		},
		{
			Tag:      "socks",
			Port:     basePort + 1,
			Listen:   listen,
			Protocol: "socks",
			Settings: InboundSettings{UDP: true},
		},
	}, nil
}
