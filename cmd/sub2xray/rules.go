package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the routing rules file",
	}

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the rules file with defaults if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := app.Rules.Load(); err != nil {
				return err
			}
			path, err := app.Rules.Path()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using %s rules config\n", styleHighlight.Render(path))
			printRulesHint(cmd.OutOrStdout(), path)
			return nil
		},
	})

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the rules file",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			// Load 校验文件可解析，并在缺失时创建默认规则
			if _, err := app.Rules.Load(); err != nil {
				return err
			}
			path, err := app.Rules.Path()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read rules file: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), styleMuted.Render(path))
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	var force bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the rules file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("reset overwrites custom rules; rerun with --force")
			}
			app, err := newApp()
			if err != nil {
				return err
			}
			if err := app.Rules.Reset(); err != nil {
				return err
			}
			path, err := app.Rules.Path()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rules reset at %s\n", styleHighlight.Render(path))
			return nil
		},
	}
	resetCmd.Flags().BoolVar(&force, "force", false, "Confirm overwriting the rules file")
	rulesCmd.AddCommand(resetCmd)

	rootCmd.AddCommand(rulesCmd)
}
