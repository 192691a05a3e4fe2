package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/service"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a subscription into server{NN}.json records",
	Example: `  sub2xray decode -s https://sub.example.com/link -o ./servers
  sub2xray decode -r ./servers/subscribe.data -o ./servers`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Long = "Decode a base64 subscription into server{NN}.json records.\n\nRecognized link schemes: " +
		strings.Join(link.Schemes(), ", ")
	flags := decodeCmd.Flags()
	flags.StringP("subscribe", "s", "", "URL to subscribe")
	flags.StringP("rawcontent", "r", "", "Path to subscribe (raw content)")
	flags.StringP("outdir", "o", "", "Path to outdir (default: storage.dir)")
	flags.Uint64("retries", 0, "Retry attempts for the subscription fetch")
	flags.Duration("timeout", 0, "Connect and response-header timeout for the fetch")
	flags.Bool("fail-fast", false, "Abort on the first undecodable link")
	decodeCmd.MarkFlagsMutuallyExclusive("subscribe", "rawcontent")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	rawPath, _ := cmd.Flags().GetString("rawcontent")

	src := service.Source{URL: appConfig.Subscription.URL}
	if rawPath != "" {
		data, err := os.ReadFile(rawPath)
		if err != nil {
			return fmt.Errorf("read raw content: %w", err)
		}
		src = service.Source{Raw: data}
	}
	if src.URL == "" && len(src.Raw) == 0 {
		return errors.New("you must specify exactly one of --subscribe or --rawcontent")
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	res, err := app.Subscriptions.Sync(cmd.Context(), src)
	if res != nil && res.RawPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Writing subscribe data (rawcontent) at %s\n", res.RawPath)
	}
	if res != nil {
		for _, saved := range res.Saved {
			path := saved.Path
			if abs, absErr := filepath.Abs(path); absErr == nil {
				path = abs
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Output file saved at %s (%02d: %s)\n",
				styleHighlight.Render(path), saved.Index, saved.Note)
		}
	}
	if err != nil {
		return err
	}
	if n := len(res.Failures); n > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render(fmt.Sprintf("%d link(s) skipped", n)))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Subscribe conversion: %s\n", styleHighlight.Render("Completed"))
	return nil
}
