// corriger detects exercice blocks in LaTeX files and inserts generated corrections.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"latex-corrector/internal/config"
	"latex-corrector/internal/corrector"
	"latex-corrector/internal/logger"
	"latex-corrector/internal/metrics"
	"latex-corrector/internal/parser"
	"latex-corrector/internal/types"
)

var (
	// Version information (set at build time)
	version = "dev"

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// app holds what every subcommand shares once the root flags are parsed.
type app struct {
	configPath   string
	logLevel     string
	printMetrics bool

	newModel func(ctx context.Context, cm *config.ConfigManager) (corrector.ChatModel, error)

	cm       *config.ConfigManager
	detector *parser.Detector
	metrics  *metrics.Collector
}

// setup loads the configuration and builds the logger, detector and metrics.
func (a *app) setup() error {
	cm, err := config.NewConfigManager(a.configPath)
	if err != nil {
		return err
	}
	if err := cm.Load(); err != nil {
		return err
	}
	a.cm = cm

	lc := cm.LoggerConfig()
	if a.logLevel != "" {
		level, err := logger.ParseLevel(a.logLevel)
		if err != nil {
			return types.NewAppError(types.ErrInvalidInput, "invalid --log-level", err)
		}
		lc.Level = level
	}
	if err := logger.Init(lc); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to initialize logger", err)
	}

	a.detector = parser.NewDetector(cm.DetectorOptions())
	if a.printMetrics || cm.GetConfig().EnablePerformanceMetric {
		a.metrics = metrics.New()
		a.detector.SetRecorder(a.metrics)
	}
	return nil
}

// teardown prints the metrics when asked and flushes the log.
func (a *app) teardown() error {
	if a.printMetrics && a.metrics != nil {
		if err := a.metrics.WriteText(os.Stderr); err != nil {
			return err
		}
	}
	return logger.Close()
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{newModel: corrector.NewChatModel})
}

func newRootCmdFor(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "corriger",
		Short: "corriger - exercise corrections for LaTeX worksheets",
		Long: titleStyle.Render("corriger") + `

Finds \begin{exercice}...\end{exercice} blocks in a LaTeX file and:
• lists them with their title and correction status
• shows the statement, correction and document numbering
• generates a correction with a chat model and inserts it
• restores the file from its latest backup

Caches live for a single run, so --metrics reports misses only.

` + dimStyle.Render("Use 'corriger [command] --help' for more information."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/latex-corrector/"+config.DefaultConfigFileName+")")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&a.printMetrics, "metrics", false, "print metrics of this run to stderr on exit")

	rootCmd.AddCommand(
		newDetectCmd(a),
		newShowCmd(a),
		newStructureCmd(a),
		newNumberingCmd(a),
		newCorrectCmd(a),
		newRestoreCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+errorMessage(err)))
		logger.Close()
		os.Exit(exitCode(err))
	}
}

// errorMessage renders err for the terminal. User errors show their message
// only; anything else shows the code and the whole cause chain.
func errorMessage(err error) string {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.IsUserError() {
		return appErr.Error()
	}

	parts := []string{fmt.Sprintf("[%s] %s", appErr.Code, appErr.Error())}
	for cause := appErr.Unwrap(); cause != nil; cause = errors.Unwrap(cause) {
		parts = append(parts, cause.Error())
	}
	return strings.Join(parts, "\n  caused by: ")
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch types.CodeOf(err) {
	case types.ErrInvalidInput, types.ErrFileNotFound, types.ErrDocumentTooLarge:
		return 2
	case types.ErrAlreadyCorrected:
		return 3
	default:
		return 1
	}
}
