package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/creamcroissant/sub2xray/internal/service"
	"github.com/creamcroissant/sub2xray/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose a saved server interactively and build its client config",
	Long:  "Launch a terminal UI listing server{NN}.json records from storage.dir; the chosen server is built to --output.",
	RunE:  runPick,
}

func init() {
	pickCmd.Flags().StringP("output", "o", "config.json", "Path to output client config file")
	addInboundFlags(pickCmd)
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	app, err := newApp()
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		tui.NewModel(app.Store.List),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	chosen := final.(tui.Model).Chosen()
	if chosen == nil {
		fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render("No server selected"))
		return nil
	}
	return buildAndWrite(cmd, app.Configs, service.BuildRequest{
		Record:  chosen,
		Options: app.InboundOptions(),
	}, output)
}
