package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"latex-corrector/internal/corrector"
	"latex-corrector/internal/editor"
	"latex-corrector/internal/logger"
	"latex-corrector/internal/parser"
	"latex-corrector/internal/types"
	"latex-corrector/internal/validator"
)

func newCorrectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct <file> <n>",
		Short: "Generate a correction for exercise n and insert it",
		Long: `Generate a correction for exercise n with the configured chat model and
insert it as a correction environment right before \end{exercice}.
The file is backed up before it is rewritten; the newest max_backups
backups are kept and 'corriger restore' undoes the last correction.

Each run starts with an empty correction cache, so --force-regenerate
changes nothing here; it is kept for parity with the library's Regenerate.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			force, _ := cmd.Flags().GetBool("force-regenerate")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.correct(ctx, cmd, args[0], args[1], dryRun, force)
		},
	}
	cmd.Flags().Bool("dry-run", false, "print the correction without writing the file")
	cmd.Flags().Bool("force-regenerate", false, "ignore the correction cache")
	return cmd
}

func (a *app) correct(ctx context.Context, cmd *cobra.Command, path, numberArg string, dryRun, force bool) error {
	doc, ex, err := a.loadExercise(path, numberArg)
	if err != nil {
		return err
	}
	if ex.IsCorrected() {
		return types.NewAppErrorWithDetails(types.ErrAlreadyCorrected,
			"exercise already has a correction", ex.Title, nil)
	}

	model, err := a.newModel(ctx, a.cm)
	if err != nil {
		return err
	}
	gen := corrector.NewGenerator(model, corrector.OptionsFromConfig(a.cm))
	if a.metrics != nil {
		gen.SetRecorder(a.metrics)
	}

	ds := parser.ScanNumbering(doc.Text)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Generating a correction for %s with %s...", ex.Title, a.cm.GetModel())))

	var body string
	if force {
		body, err = gen.Regenerate(ctx, ex.Content, &ds)
	} else {
		body, err = gen.Generate(ctx, ex.Content, &ds)
	}
	if err != nil {
		logger.Error("correction failed", err, logger.Int("exercise", ex.Number))
		return err
	}

	if result := validator.ValidateCorrection(body); !result.Valid {
		fmt.Fprintln(out, warnStyle.Render("⚠ "+result.Summary))
		fmt.Fprintln(out, dimStyle.Render(validator.FormatIssues(result.Issues)))
	}

	if dryRun {
		fmt.Fprintln(out, editor.CorrectionBlock(body))
		return nil
	}

	updated, err := editor.InsertCorrection(doc.Text, ex, body)
	if err != nil {
		return err
	}
	backups := editor.NewBackupManager("")
	backupPath, err := doc.Save(updated, backups)
	if err != nil {
		return err
	}
	if err := backups.CleanupBackups(doc.Path, a.cm.GetMaxBackups()); err != nil {
		logger.Warn("backup cleanup failed", logger.Err(err), logger.String("path", doc.Path))
	}

	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Correction inserted in %s", ex.Title)))
	if backupPath != "" {
		fmt.Fprintf(out, "  Backup: %s\n", dimStyle.Render(backupPath))
	}
	return nil
}
