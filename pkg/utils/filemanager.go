// =============================================================================
// Budget Analyzer - Report File Manager
// =============================================================================
//
// This module writes analysis reports and validation logs to the report
// directory, including:
//   - Unique report file names
//   - Report files written through a render callback
//   - Plain-text validation logs
//   - Retention cleanup of old reports
//
// NAMING:
//   Report names come from a format with placeholders, for example
//   "{original}_{timestamp}_{uuid}". Two runs never overwrite each other.
//
// CUSTOMIZATION:
//   - Set UseTimestampSubdirs to group reports by day.
//   - Change DefaultNameFormat to change how reports are named.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/validation"
)

// DefaultNameFormat names reports after their source and the run.
const DefaultNameFormat = "{original}_{timestamp}_{uuid}"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the files of the report directory.
type FileManager struct {
	// ReportDir is the directory where reports are written.
	ReportDir string

	// NameFormat is the report name format, without extension.
	// Default: DefaultNameFormat
	NameFormat string

	// UseTimestampSubdirs writes reports to date-based subdirectories.
	// Example: reports/2024/01/15/obra_20240115_143022_<uuid>.json
	UseTimestampSubdirs bool

	now func() time.Time
}

// NewFileManager creates a FileManager writing to reportDir.
func NewFileManager(reportDir string) *FileManager {
	return &FileManager{
		ReportDir:  reportDir,
		NameFormat: DefaultNameFormat,
		now:        time.Now,
	}
}

// EnsureDirectory creates the report directory if it does not exist.
func (fm *FileManager) EnsureDirectory() error {
	if err := os.MkdirAll(fm.ReportDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.ReportDir, err)
	}
	return nil
}

// reportPath returns the full path for a new report file.
func (fm *FileManager) reportPath(source, ext string) string {
	now := fm.now()
	name := GenerateReportFileName(fm.NameFormat, now, map[string]string{
		"original": SourceName(source),
	}, ext)

	dir := fm.ReportDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(
			dir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}
	return filepath.Join(dir, name)
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateReportFileName generates a unique report file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - The time as YYYYMMDD_HHMMSS
//     {date}      - The date as YYYYMMDD
//     {time}      - The time as HHMMSS
//     {original}  - The source name (see SourceName)
//   - now: The time to stamp.
//   - params: Values of extra placeholders, keyed without braces.
//   - ext: The extension, with or without the leading dot.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//
//	format: "{original}_{timestamp}_{uuid}"
//	params: {"original": "obra"}
//	output: "obra_20240115_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.json"
func GenerateReportFileName(format string, now time.Time, params map[string]string, ext string) string {
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// SourceName turns a workbook path or directory into a file name part:
// the base name without extension, with path separators and spaces replaced.
func SourceName(source string) string {
	base := filepath.Base(strings.TrimRight(source, `/\`))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "presupuesto"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, base)
}

// =============================================================================
// REPORT WRITING
// =============================================================================

// WriteReport writes a new report file.
//
// PARAMETERS:
//   - source: The workbook the report is about, used in the file name.
//   - ext: The file extension ("json", "yaml", "txt").
//   - write: Writes the report content.
//
// RETURNS:
//   - The path to the report file.
//   - An error if the file cannot be created, written or closed. A failed
//     report is removed.
func (fm *FileManager) WriteReport(source, ext string, write func(io.Writer) error) (string, error) {
	path := fm.reportPath(source, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}

	writer := bufio.NewWriter(file)
	if err := write(writer); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to flush report: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	return path, nil
}

// =============================================================================
// VALIDATION LOG
// =============================================================================

// WriteValidationLog writes the issues of an import to a text log.
//
// PARAMETERS:
//   - source: The workbook that was validated.
//   - result: The validation result.
//
// RETURNS:
//   - The path to the log file, or "" when there are no issues.
//   - An error if writing fails.
func (fm *FileManager) WriteValidationLog(source string, result *validation.Result) (string, error) {
	if result == nil || len(result.Issues) == 0 {
		return "", nil
	}

	return fm.WriteReport(source, "log", func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Budget Analyzer - Validation Log\n"+
			"Source: %s\n"+
			"Generated: %s\n"+
			"Errors: %d\n"+
			"Warnings: %d\n"+
			"================================================================================\n\n",
			source,
			fm.now().Format("2006-01-02 15:04:05"),
			result.ErrorCount,
			result.WarningCount)
		if err != nil {
			return err
		}

		for i, issue := range result.Issues {
			entry := fmt.Sprintf("Issue #%d\n"+
				"  Severity:       %s\n"+
				"  Sheet:          %s\n"+
				"  Rule:           %s\n"+
				"  Message:        %s\n",
				i+1, issue.Severity, issue.Sheet, issue.Rule, issue.Message)
			if issue.Row > 0 {
				entry += fmt.Sprintf("  Row Number:     %d\n", issue.Row)
			}
			if _, err := io.WriteString(w, entry+"\n"); err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, "================================================================================\n"+
			"End of Validation Log\n")
		return err
	})
}

// =============================================================================
// RETENTION
// =============================================================================

// CleanOldReports removes report files older than maxAge.
//
// RETURNS:
//   - The number of files removed.
//   - An error if cleaning fails. A missing report directory is not an error.
func (fm *FileManager) CleanOldReports(maxAge time.Duration) (int, error) {
	cutoff := fm.now().Add(-maxAge)
	removed := 0

	err := filepath.Walk(fm.ReportDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})

	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return removed, fmt.Errorf("failed to clean reports: %w", err)
	}
	return removed, nil
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
