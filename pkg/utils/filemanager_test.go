package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/validation"
)

func fixedManager(t *testing.T) *FileManager {
	t.Helper()
	fm := NewFileManager(filepath.Join(t.TempDir(), "reports"))
	fm.now = func() time.Time { return time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC) }
	return fm
}

func TestGenerateReportFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
	name := GenerateReportFileName("{original}_{timestamp}_{uuid}", now, map[string]string{"original": "obra"}, "json")
	require.True(t, strings.HasPrefix(name, "obra_20240115_143022_"), name)
	require.True(t, strings.HasSuffix(name, ".json"), name)
	require.Len(t, name, len("obra_20240115_143022_")+36+len(".json"))

	other := GenerateReportFileName("{original}_{timestamp}_{uuid}", now, map[string]string{"original": "obra"}, "json")
	require.NotEqual(t, name, other)

	require.Equal(t, "resumen_20240115.txt", GenerateReportFileName("resumen_{date}.txt", now, nil, ".txt"))
}

func TestSourceName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "obra_norte", SourceName("/data/obra norte.xlsx"))
	require.Equal(t, "exportado", SourceName("/data/exportado/"))
	require.Equal(t, "presupuesto", SourceName(""))
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	fm := fixedManager(t)
	fm.UseTimestampSubdirs = true

	path, err := fm.WriteReport("/data/obra.xlsx", "yaml", func(w io.Writer) error {
		_, err := io.WriteString(w, "title: Obra\n")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(fm.ReportDir, "2024", "01", "15"), filepath.Dir(path))
	require.True(t, strings.HasPrefix(filepath.Base(path), "obra_20240115_143022_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "title: Obra\n", string(data))

	_, err = fm.WriteReport("obra.xlsx", "json", func(io.Writer) error { return fmt.Errorf("boom") })
	require.ErrorContains(t, err, "failed to write report: boom")
}

func TestWriteReport_FailureLeavesNoFile(t *testing.T) {
	t.Parallel()

	fm := fixedManager(t)

	_, err := fm.WriteReport("obra.xlsx", "json", func(w io.Writer) error {
		if _, err := io.WriteString(w, `{"title": "Ob`); err != nil {
			return err
		}
		return fmt.Errorf("encoder failed")
	})
	require.ErrorContains(t, err, "encoder failed")

	entries, err := os.ReadDir(fm.ReportDir)
	require.NoError(t, err)
	require.Empty(t, entries, "no partial report is left behind")
}

func TestWriteValidationLog(t *testing.T) {
	t.Parallel()

	fm := fixedManager(t)

	path, err := fm.WriteValidationLog("obra.xlsx", &validation.Result{IsValid: true})
	require.NoError(t, err)
	require.Empty(t, path)

	path, err = fm.WriteValidationLog("obra.xlsx", &validation.Result{
		IsValid: true,
		Issues: []*validation.Issue{
			{Severity: validation.SeverityWarning, Sheet: "Asignación_Materiales", Row: 3, Rule: validation.RuleOrphanItem, Message: `item code "I9" is not in the budget`},
		},
		WarningCount: 1,
	})
	require.NoError(t, err)
	require.Equal(t, ".log", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.Contains(t, out, "Source: obra.xlsx")
	require.Contains(t, out, "Generated: 2024-01-15 14:30:22")
	require.Contains(t, out, "Warnings: 1")
	require.Contains(t, out, "  Rule:           orphan_item\n")
	require.Contains(t, out, "  Row Number:     3\n")
	require.True(t, strings.HasSuffix(out, "End of Validation Log\n"))
}

func TestCleanOldReports(t *testing.T) {
	t.Parallel()

	fm := NewFileManager(filepath.Join(t.TempDir(), "reports"))

	removed, err := fm.CleanOldReports(time.Hour)
	require.NoError(t, err, "missing directory")
	require.Zero(t, removed)

	require.NoError(t, fm.EnsureDirectory())
	oldPath := filepath.Join(fm.ReportDir, "old.json")
	newPath := filepath.Join(fm.ReportDir, "new.json")
	require.NoError(t, os.WriteFile(oldPath, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte("{}"), 0o644))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	removed, err = fm.CleanOldReports(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.NoFileExists(t, oldPath)
	require.FileExists(t, newPath)
	require.True(t, IsDir(fm.ReportDir))
	require.False(t, IsDir(newPath))
}
