package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 是环境变量前缀，例如 SUB2XRAY_STORAGE_DIR。
const EnvPrefix = "SUB2XRAY"

// FlagBindings 把命令行 flag 名映射到配置键。
type FlagBindings map[string]string

// LoadOptions 控制配置来源。
type LoadOptions struct {
	// File 指定配置文件，为空时按搜索路径查找 config.yaml。
	File  string
	Flags *pflag.FlagSet
	Bind  FlagBindings
}

// Load 依次合并默认值、配置文件、环境变量与命令行 flag。
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "sub2xray"))
		}
		v.AddConfigPath("/etc/sub2xray/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range opts.Bind {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.File != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetDefault("subscription.url", "")
	v.SetDefault("subscription.timeout", "10s")
	v.SetDefault("subscription.retries", 0)
	v.SetDefault("subscription.max_bytes", 8<<20)
	v.SetDefault("subscription.user_agent", "")

	v.SetDefault("storage.dir", ".")
	v.SetDefault("rules.path", "~/.v2rules.json")

	v.SetDefault("inbound.allow_lan", false)
	v.SetDefault("inbound.http_port", 10809)

	v.SetDefault("decode.fail_fast", false)

	v.SetDefault("serve.addr", "127.0.0.1:8080")
	v.SetDefault("serve.refresh_spec", "@every 1h")
	v.SetDefault("serve.cache_ttl", "2h")
	v.SetDefault("serve.shutdown_timeout", "15s")
	v.SetDefault("serve.refresh_limit", 6)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "sub2xray")
}
