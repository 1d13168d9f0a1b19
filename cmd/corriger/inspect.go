package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"latex-corrector/internal/editor"
	"latex-corrector/internal/logger"
	"latex-corrector/internal/parser"
	"latex-corrector/internal/types"
)

// exerciseRow is the detect output for one exercise.
type exerciseRow struct {
	Number    int                  `json:"number"`
	Title     string               `json:"title"`
	Status    types.ExerciseStatus `json:"status"`
	Start     int                  `json:"start"`
	End       int                  `json:"end"`
	FirstLine int                  `json:"first_line"`
	LastLine  int                  `json:"last_line"`
}

func newDetectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "List the exercises of a LaTeX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			doc, exercises, err := a.load(args[0])
			if err != nil {
				return err
			}

			rows := make([]exerciseRow, 0, len(exercises))
			for _, ex := range exercises {
				first, last := editor.LineRange(doc.Text, ex)
				rows = append(rows, exerciseRow{
					Number:    ex.Number,
					Title:     ex.Title,
					Status:    ex.Status,
					Start:     ex.Start,
					End:       ex.End,
					FirstLine: first,
					LastLine:  last,
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, rows)
			}
			printExercises(out, doc.Path, rows)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func printExercises(w io.Writer, path string, rows []exerciseRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, warnStyle.Render("No exercise found in "+path))
		return
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d exercise(s) in %s", len(rows), path)))
	fmt.Fprintln(w)
	for _, r := range rows {
		status := dimStyle.Render(string(r.Status))
		if r.Status == types.StatusCorrected {
			status = successStyle.Render("✓ " + string(r.Status))
		}
		fmt.Fprintf(w, "  %3d. %-50s %s\n", r.Number, r.Title, status)
		fmt.Fprintf(w, "       %s\n", dimStyle.Render(fmt.Sprintf("lines %d-%d, bytes %d-%d", r.FirstLine, r.LastLine, r.Start, r.End)))
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file> <n>",
		Short: "Print the LaTeX of one exercise",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ex, err := a.loadExercise(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ex.Content)
			return nil
		},
	}
}

func newStructureCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "structure <file> <n>",
		Short: "Split one exercise into statement, correction and other content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			_, ex, err := a.loadExercise(args[0], args[1])
			if err != nil {
				return err
			}
			s := parser.ParseStructure(ex.Content)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, s)
			}
			fmt.Fprintln(out, titleStyle.Render(ex.Title))
			printPart(out, "enonce", s.Enonce)
			printPart(out, "correction", s.Correction)
			printPart(out, "other", s.OtherContent)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func printPart(w io.Writer, name string, part *string) {
	fmt.Fprintln(w)
	if part == nil {
		fmt.Fprintln(w, dimStyle.Render("["+name+"] absent"))
		return
	}
	fmt.Fprintln(w, successStyle.Render("["+name+"]"))
	fmt.Fprintln(w, *part)
}

func newNumberingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "numbering <file>",
		Short: "List the numbered sections and theorems of a LaTeX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			doc, err := editor.LoadDocument(args[0], a.cm.GetMaxDocumentSize())
			if err != nil {
				return err
			}
			ds := parser.ScanNumbering(doc.Text)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, ds)
			}
			fmt.Fprintln(out, titleStyle.Render("Numbering of "+doc.Path))
			for _, env := range slices.Concat(ds.Sections, ds.Theorems) {
				line := editor.PositionAt(doc.Text, env.Start).Line
				label := fmt.Sprintf("%s %d", env.Type, env.Number)
				if env.Title != "" {
					label += " : " + env.Title
				}
				fmt.Fprintf(out, "  %-60s %s\n", label, dimStyle.Render("line "+strconv.Itoa(line)))
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  current section %d, current theorem %d\n", ds.CurrentSection, ds.CurrentTheorem)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

// load reads a document and detects its exercises.
func (a *app) load(path string) (*editor.Document, []types.Exercise, error) {
	doc, err := editor.LoadDocument(path, a.cm.GetMaxDocumentSize())
	if err != nil {
		return nil, nil, err
	}
	exercises := a.detector.Detect(doc.Text)
	logger.Info("exercises detected", logger.String("path", path), logger.Int("count", len(exercises)))
	return doc, exercises, nil
}

// loadExercise reads a document and picks exercise numberArg from it.
func (a *app) loadExercise(path, numberArg string) (*editor.Document, types.Exercise, error) {
	n, err := parseExerciseNumber(numberArg)
	if err != nil {
		return nil, types.Exercise{}, err
	}
	doc, exercises, err := a.load(path)
	if err != nil {
		return nil, types.Exercise{}, err
	}
	ex, err := findExercise(exercises, n)
	if err != nil {
		return nil, types.Exercise{}, err
	}
	return doc, ex, nil
}

// parseExerciseNumber parses a 1-based exercise number argument.
func parseExerciseNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"invalid exercise number", fmt.Sprintf("%q is not a positive integer", arg), err)
	}
	return n, nil
}

// findExercise returns the exercise numbered n.
func findExercise(exercises []types.Exercise, n int) (types.Exercise, error) {
	for _, ex := range exercises {
		if ex.Number == n {
			return ex, nil
		}
	}
	return types.Exercise{}, types.NewAppErrorWithDetails(types.ErrInvalidInput,
		fmt.Sprintf("no exercise %d", n),
		fmt.Sprintf("the document has %d exercise(s)", len(exercises)), nil)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
