package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/sub2xray/internal/service"
	"github.com/creamcroissant/sub2xray/internal/xray"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an Xray client config from a saved server record",
	Example: `  sub2xray build -i ./servers/server01.json -o config.json
  sub2xray build --index 3 --http_port 1080 --allow_lan`,
	RunE: runBuild,
}

func init() {
	flags := buildCmd.Flags()
	flags.StringP("input", "i", "", "Path to input server config file")
	flags.Int("index", 0, "Pick server{NN}.json from storage.dir instead of --input")
	flags.StringP("output", "o", "config.json", "Path to output client config file")
	addInboundFlags(buildCmd)
	buildCmd.MarkFlagsMutuallyExclusive("input", "index")
	rootCmd.AddCommand(buildCmd)
}

// addInboundFlags 注册入站相关 flag，build 与 pick 共用。
func addInboundFlags(cmd *cobra.Command) {
	cmd.Flags().Int("http_port", xray.DefaultHTTPPort,
		"Set the HTTP proxy port (0-65534); socks listens on http_port+1")
	cmd.Flags().Bool("allow_lan", false,
		"Allow connections from local area network (LAN) instead of localhost only")
}

func runBuild(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	index, _ := cmd.Flags().GetInt("index")
	output, _ := cmd.Flags().GetString("output")
	if input == "" && index <= 0 {
		return errors.New("you must specify --input or --index")
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	return buildAndWrite(cmd, app.Configs, service.BuildRequest{
		InputPath: input,
		Index:     index,
		Options:   app.InboundOptions(),
	}, output)
}

func buildAndWrite(cmd *cobra.Command, configs service.ConfigService, req service.BuildRequest, output string) error {
	res, err := configs.Build(cmd.Context(), req)
	if err != nil {
		var unsupported *xray.UnsupportedProtocolError
		if errors.As(err, &unsupported) {
			return fmt.Errorf("unsupported server protocol: %s", unsupported.Protocol)
		}
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Using %s rules config\n", styleHighlight.Render(res.RulesPath))
	fmt.Fprintf(out, "Loading %s server config\n", styleHighlight.Render(res.Record.Note))

	if err := configs.Write(output, res.Document); err != nil {
		return err
	}
	fmt.Fprintf(out, "Client config saved at %s\n", styleHighlight.Render(output))
	printRulesHint(out, res.RulesPath)
	return nil
}

func printRulesHint(out io.Writer, path string) {
	fmt.Fprintf(out, "\n%s\n", styleMuted.Render(
		fmt.Sprintf("Note: If you want to add more rules, please modify %s", path)))
}
