package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *a.cm.GetConfig()
			c.OpenAIAPIKey = maskSecret(c.OpenAIAPIKey)
			c.GitHubToken = maskSecret(c.GitHubToken)
			return writeJSON(cmd.OutOrStdout(), c)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.cm.GetConfigPath())
			return nil
		},
	}

	setKeyCmd := &cobra.Command{
		Use:   "set-key <key>",
		Short: "Store the OpenAI API key in the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cm.SetAPIKey(strings.TrimSpace(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ API key saved to "+a.cm.GetConfigPath()))
			return nil
		},
	}

	cmd.AddCommand(showCmd, pathCmd, setKeyCmd)
	return cmd
}

// maskSecret keeps the last four characters of a credential.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
