package config

import (
	"log/slog"
	"time"
)

// Config 汇总应用的全部配置。
type Config struct {
	Log          LogConfig          `mapstructure:"log"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Rules        RulesConfig        `mapstructure:"rules"`
	Inbound      InboundConfig      `mapstructure:"inbound"`
	Decode       DecodeConfig       `mapstructure:"decode"`
	Serve        ServeConfig        `mapstructure:"serve"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// SubscriptionConfig 定义订阅拉取参数。
type SubscriptionConfig struct {
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   uint64        `mapstructure:"retries"`
	MaxBytes  int64         `mapstructure:"max_bytes"`
	UserAgent string        `mapstructure:"user_agent"`
}

// StorageConfig 定义 server{NN}.json 与 subscribe.data 的存放目录。
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

type RulesConfig struct {
	Path string `mapstructure:"path"`
}

// InboundConfig 定义本地 http/socks 入站。
type InboundConfig struct {
	AllowLAN bool `mapstructure:"allow_lan"`
	HTTPPort int  `mapstructure:"http_port"`
}

type DecodeConfig struct {
	FailFast bool `mapstructure:"fail_fast"`
}

// ServeConfig 定义 serve 模式的 HTTP 与刷新参数。
type ServeConfig struct {
	Addr            string        `mapstructure:"addr"`
	RefreshSpec     string        `mapstructure:"refresh_spec"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RefreshLimit 是每个客户端每分钟可调用 refresh/decode 的次数，0 表示不限。
	RefreshLimit int `mapstructure:"refresh_limit"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
