// =============================================================================
// Budget Analyzer - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a workbook without
// analyzing it: missing sheets, cost and type columns the summary cannot find,
// duplicate or blank codes, and assignment rows pointing at unknown codes.
//
// COMMAND USAGE:
//   presupuesto validate <workbook> [--log]
//
// EXIT STATUS:
//   0 when the workbook can be imported (warnings allowed), 1 otherwise.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presupuesto-analyzer/pkg/utils"
)

// writeLog writes the validation log to the report directory.
var writeLog bool

var validateCmd = &cobra.Command{
	Use:   "validate <workbook>",
	Short: "Check a workbook for missing sheets and inconsistent codes",
	Long: `The validate command reads a workbook (an .xlsx file or a directory of CSV
files) and reports every problem found. Missing required sheets are errors;
everything else is a warning that analysis tolerates.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(
		&writeLog,
		"log",
		false,
		"Write the issues to a validation log in the report directory",
	)
}

func runValidate(path string) error {
	res, importErr := importWorkbook(path)
	if res == nil || res.Validation == nil {
		return importErr
	}

	if err := printer.Validation(res.Validation); err != nil {
		return err
	}

	if writeLog {
		logPath, err := utils.NewFileManager(cfg.ReportDir).WriteValidationLog(path, res.Validation)
		if err != nil {
			return err
		}
		if logPath != "" {
			logger.Info("Validation log written to %s", logPath)
		}
	}

	if !res.Validation.IsValid {
		return fmt.Errorf("%s is not a valid budget workbook: %d error(s)", path, res.Validation.ErrorCount)
	}
	return nil
}
