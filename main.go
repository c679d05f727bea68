// =============================================================================
// Budget Analyzer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Budget Analyzer CLI application. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   presupuesto analyze   - Import workbooks and summarize their costs
//   presupuesto table     - Print a filtered, sorted page of a table
//   presupuesto validate  - Check a workbook without analyzing it
//   presupuesto serve     - Start the JSON HTTP API
//   presupuesto version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/presupuesto-analyzer/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
