package workbook

import (
	"errors"
	"time"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/config"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/logging"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/validation"
)

// =============================================================================
// IMPORT RESULT
// =============================================================================

// Result represents the outcome of importing one workbook.
type Result struct {
	// Source is the file or upload the workbook came from.
	Source string `json:"source"`

	// Session is the new session. Nil if the import failed.
	Session *Session `json:"-"`

	// Validation holds every issue found, including the blocking ones.
	Validation *validation.Result `json:"validation"`

	Stats ImportStats `json:"stats"`
}

// ImportStats contains statistics about an import.
type ImportStats struct {
	BudgetItems         int           `json:"budgetItems" yaml:"budgetItems"`
	Materials           int           `json:"materials" yaml:"materials"`
	MaterialAssignments int           `json:"materialAssignments" yaml:"materialAssignments"`
	LaborTypes          int           `json:"laborTypes" yaml:"laborTypes"`
	LaborAssignments    int           `json:"laborAssignments" yaml:"laborAssignments"`
	Warnings            int           `json:"warnings" yaml:"warnings"`
	ProcessingTime      time.Duration `json:"processingTime" yaml:"processingTime"`
}

// =============================================================================
// IMPORTER
// =============================================================================

// Importer turns raw workbooks into sessions.
type Importer struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewImporter creates an Importer. A nil logger discards log output.
func NewImporter(cfg *config.Config, logger logging.Logger) *Importer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Importer{cfg: cfg, logger: logger}
}

// Import loads raw and, when it is valid, builds a new session for it.
//
// RETURNS:
//   - The import result. Result.Validation is set even when the import fails.
//   - A *MissingSheetsError if required sheets are absent.
func (im *Importer) Import(raw *Raw) (*Result, error) {
	start := time.Now()
	if raw == nil {
		raw = NewRaw("")
	}
	result := &Result{Source: raw.Source}

	im.logger.Info("Importing workbook: %s", raw.Source)
	im.logger.Debug("Workbook has %d sheets: %v", len(raw.Order), raw.Order)

	wb, err := Load(raw, im.cfg)
	if err != nil {
		var missing *MissingSheetsError
		if errors.As(err, &missing) {
			result.Validation = missing.Validation
		}
		im.logger.Error("Import of %s failed: %v", raw.Source, err)
		return result, err
	}
	result.Validation = wb.Validation

	for _, issue := range wb.Validation.Issues {
		im.logger.Warn("Validation: %s", issue.Error())
	}

	session := NewSession(wb, im.cfg)
	result.Session = session
	result.Stats = ImportStats{
		BudgetItems:         wb.Budget.Len(),
		Materials:           session.Materials.Catalog.Len(),
		MaterialAssignments: wb.MaterialsAssignment.Len(),
		LaborTypes:          session.Labor.Catalog.Len(),
		LaborAssignments:    wb.LaborAssignment.Len(),
		Warnings:            wb.Validation.WarningCount,
		ProcessingTime:      time.Since(start),
	}

	im.logger.Info("Imported %q as session %s: %d budget items, %d material and %d labor assignments",
		wb.Title, session.ID, result.Stats.BudgetItems, result.Stats.MaterialAssignments, result.Stats.LaborAssignments)
	return result, nil
}
