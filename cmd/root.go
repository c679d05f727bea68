// =============================================================================
// Budget Analyzer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (presupuesto)
//   ├── analyzeCmd  (presupuesto analyze)
//   ├── tableCmd    (presupuesto table)
//   ├── validateCmd (presupuesto validate)
//   ├── serveCmd    (presupuesto serve)
//   └── versionCmd  (presupuesto version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the configuration (file, then PRESUPUESTO_* environment)
//   2. Sets up logging (--verbose forces debug level)
//   3. Resolves the output format
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/config"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/logging"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/render"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// outputFormat is the raw --output flag value.
var outputFormat string

// Set by the root command before any subcommand runs.
var (
	cfg     *config.Config
	logger  logging.Logger
	printer *render.Printer
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "presupuesto",
	Short: "Budget Analyzer - Cross-sheet analysis of construction budget workbooks",
	Long: `Budget Analyzer reads a construction budget workbook (the budget, its
material and labor catalogs, and the sheets assigning them to budget items) and
answers questions across the sheets: which items use a material, what a set of
items costs by type, which materials and labor dominate a selection.

Key Features:
  - Reads .xlsx workbooks or a directory with one CSV file per sheet
  - Tolerant of orphan codes, missing optional sheets and messy numbers
  - Text, checklist and per-column filters with sorting and pagination
  - Cost summaries by type, material and labor
  - JSON HTTP API for a browser front end

Example Usage:
  presupuesto analyze obra.xlsx                     # Import and summarize
  presupuesto analyze obra.xlsx --material M-001    # Only items using M-001
  presupuesto table obra.xlsx presupuesto -q hormi  # Browse a table
  presupuesto serve --config ./presupuesto.yaml     # Start the HTTP API`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Persistent flags are available to this command and all subcommands.

	// --config flag: A missing file leaves the defaults in place.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"presupuesto.yaml",
		"Path to the configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	// --output flag: table, json or yaml.
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat,
		"output",
		"o",
		string(render.FormatTable),
		"Output format: table, json or yaml",
	)
}

// initConfig loads the configuration and sets up logging and output.
func initConfig() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger = logging.New(os.Stderr, level)
	logger.Debug("Configuration loaded from %s", cfgFile)

	format, err := render.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	printer = render.New(color.Output, format)
	return nil
}
