// =============================================================================
// Budget Analyzer - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command, the main command of the CLI. It
// imports one or more budget workbooks and prints, for each, the import
// statistics, the validation report and the cost summary of the selection.
//
// COMMAND USAGE:
//   presupuesto analyze <workbook>... [flags]
//
// FLAGS:
//   --material, --labor  : Only items that use the material / labor code
//   --items              : Only these item codes
//   --search             : Free-text search (does not narrow the summary)
//   --report             : Also write each summary to the report directory
//   --report-format      : json or yaml
//   --retention          : Remove reports older than this before writing
//
// PROCESSING PIPELINE:
//   1. For each workbook (concurrently):
//      a. Read the .xlsx file or CSV directory
//      b. Validate and import it into a session
//      c. Apply the selection and aggregate
//      d. Write the report and validation log (with --report)
//   2. Print the results in argument order
//   3. Print a run summary
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/aggregate"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/render"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
	"github.com/ginjaninja78/presupuesto-analyzer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var analyzeSelection selectionFlags

// writeReport writes each summary to the report directory.
var writeReport bool

// reportFormat is the report file format.
var reportFormat string

// retention removes older reports before writing, when positive.
var retention time.Duration

// =============================================================================
// ANALYZE COMMAND DEFINITION
// =============================================================================

var analyzeCmd = &cobra.Command{
	Use:   "analyze <workbook>...",
	Short: "Import budget workbooks and summarize their costs",
	Long: `The analyze command imports each workbook (an .xlsx file or a directory with
one CSV file per sheet), validates it, and prints the cost summary of the
selected budget items: total cost, cost by type, and the materials and labor
they use.

Workbooks are processed concurrently. A workbook missing a required sheet is
reported and skipped; the others are still analyzed.

With --report, each summary is also written to the report directory, together
with a log of the validation issues found.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeSelection.register(analyzeCmd)

	analyzeCmd.Flags().BoolVar(
		&writeReport,
		"report",
		false,
		"Write each summary to the report directory",
	)
	analyzeCmd.Flags().StringVar(
		&reportFormat,
		"report-format",
		string(render.FormatJSON),
		"Report file format: json or yaml",
	)
	analyzeCmd.Flags().DurationVar(
		&retention,
		"retention",
		0,
		"Remove reports older than this before writing (e.g. 720h)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// analysis is the outcome of analyzing one workbook.
type analysis struct {
	Path       string
	Result     *workbook.Result
	Summary    *aggregate.Summary
	ReportPath string
	LogPath    string
	Err        error
}

func runAnalyze(out io.Writer, paths []string) error {
	startTime := time.Now()

	format, err := render.ParseFormat(reportFormat)
	if err != nil || format == render.FormatTable {
		return fmt.Errorf("invalid --report-format %q: want json or yaml", reportFormat)
	}

	fm := utils.NewFileManager(cfg.ReportDir)
	if writeReport {
		if err := fm.EnsureDirectory(); err != nil {
			return err
		}
		if retention > 0 {
			removed, err := fm.CleanOldReports(retention)
			if err != nil {
				return err
			}
			logger.Info("Removed %d report(s) older than %s", removed, retention)
		}
	}

	logger.Info("Analyzing %d workbook(s) for %s", len(paths), analyzeSelection.describe())

	// =========================================================================
	// PROCESS WORKBOOKS CONCURRENTLY
	// =========================================================================

	results := make([]analysis, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i] = analyzeOne(path, fm, format)
		}(i, path)
	}
	wg.Wait()

	// =========================================================================
	// PRINT RESULTS
	// =========================================================================

	var failed int
	for _, a := range results {
		if a.Result != nil {
			if err := printer.Import(a.Result); err != nil {
				return err
			}
		}
		if a.Err != nil {
			failed++
			logger.Error("%s: %v", filepath.Base(a.Path), a.Err)
			continue
		}
		if printer.Format() == render.FormatTable {
			fmt.Fprintln(out)
		}
		if err := printer.Summary(a.Result.Session.Workbook.Title, a.Summary); err != nil {
			return err
		}
	}

	if printer.Format() == render.FormatTable {
		fmt.Fprintln(out, "\n=== Analysis Complete ===")
		fmt.Fprintf(out, "Total workbooks: %d\n", len(paths))
		fmt.Fprintf(out, "Successful:      %d\n", len(paths)-failed)
		fmt.Fprintf(out, "Errors:          %d\n", failed)
		fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime))
		for _, a := range results {
			if a.ReportPath != "" {
				fmt.Fprintf(out, "Report:          %s\n", a.ReportPath)
			}
			if a.LogPath != "" {
				fmt.Fprintf(out, "Validation log:  %s\n", a.LogPath)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d workbook(s) failed", failed, len(paths))
	}
	return nil
}

// analyzeOne imports and aggregates one workbook, writing its report files
// when --report is set.
func analyzeOne(path string, fm *utils.FileManager, format render.Format) analysis {
	a := analysis{Path: path}

	a.Result, a.Err = importWorkbook(path)
	if writeReport && a.Result != nil {
		logPath, err := fm.WriteValidationLog(path, a.Result.Validation)
		if err != nil {
			a.Err = errors.Join(a.Err, err)
		}
		a.LogPath = logPath
	}
	if a.Err != nil {
		return a
	}

	session := a.Result.Session.WithSelection(analyzeSelection.state())
	a.Summary = session.Summary()

	if writeReport {
		a.ReportPath, a.Err = fm.WriteReport(path, string(format), func(w io.Writer) error {
			return render.New(w, format).Summary(session.Workbook.Title, a.Summary)
		})
	}
	return a
}
