package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"latex-corrector/internal/editor"
)

func newRestoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Undo the last correction by restoring the latest backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetBool("list")

			path := args[0]
			backups := editor.NewBackupManager("")
			out := cmd.OutOrStdout()

			if list {
				paths, err := backups.ListBackups(path)
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					fmt.Fprintln(out, warnStyle.Render("No backup for "+path))
					return nil
				}
				for _, p := range paths {
					fmt.Fprintln(out, p)
				}
				return nil
			}

			latest, err := backups.GetLatestBackup(path)
			if err != nil {
				return err
			}
			if err := backups.Restore(latest, path); err != nil {
				return err
			}

			fmt.Fprintln(out, successStyle.Render("✓ Restored "+path))
			fmt.Fprintf(out, "  From: %s\n", dimStyle.Render(filepath.Base(latest)))
			return nil
		},
	}
	cmd.Flags().Bool("list", false, "list the backups, newest first, without restoring")
	return cmd
}
