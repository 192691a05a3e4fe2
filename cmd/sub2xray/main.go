package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/sub2xray/internal/bootstrap"
	"github.com/creamcroissant/sub2xray/internal/config"
	"github.com/creamcroissant/sub2xray/internal/support/logging"
)

// Build info - injected via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	configFile string
	appConfig  *config.Config
	logger     *slog.Logger
)

// flagBindings 把各子命令的 flag 绑定到配置键，未在当前命令上注册的 flag 会被忽略。
var flagBindings = config.FlagBindings{
	"log-level":  "log.level",
	"log-format": "log.format",
	"subscribe":  "subscription.url",
	"retries":    "subscription.retries",
	"timeout":    "subscription.timeout",
	"outdir":     "storage.dir",
	"rules":      "rules.path",
	"http_port":  "inbound.http_port",
	"allow_lan":  "inbound.allow_lan",
	"fail-fast":  "decode.fail_fast",
	"addr":       "serve.addr",
	"refresh":    "serve.refresh_spec",
}

var rootCmd = &cobra.Command{
	Use:   "sub2xray",
	Short: "Convert proxy subscriptions into Xray client configs",
	Long: `sub2xray decodes a base64 subscription into per-server JSON records
and assembles Xray client configs with local http/socks inbounds and routing rules.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.LoadOptions{
			File:  configFile,
			Flags: cmd.Flags(),
			Bind:  flagBindings,
		})
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appConfig = cfg
		logger = logging.New(logging.Options{
			Level:     cfg.Log.SlogLevel(),
			Format:    cfg.Log.Format,
			AddSource: cfg.Log.AddSource,
			Writer:    cmd.ErrOrStderr(),
		})
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to config file (default: ./config.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
	flags.String("rules", "", "Path to routing rules file (default: ~/.v2rules.json)")
}

func newApp() (*bootstrap.App, error) {
	return bootstrap.BuildApp(appConfig, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleFailure.Render(err.Error()))
		os.Exit(1)
	}
}
